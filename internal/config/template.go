package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// BoardLabels are the metadata labels expected above the table. Values are
// the literal cell text of the template version, matched after normalization.
type BoardLabels struct {
	ModelNo      string `yaml:"model_no"`
	BuildStage   string `yaml:"build_stage"`
	BoardName    string `yaml:"board_name"`
	Manufacturer string `yaml:"manufacturer"`
	Date         string `yaml:"date"`
	MaterialCost string `yaml:"material_cost"`
	OverheadCost string `yaml:"overhead_cost"`
	TotalCost    string `yaml:"total_cost"`
}

// Template is one BOM template version as declarative data: the labels that
// identify it, the canonical column vocabulary, and the dictionaries the
// taxonomy normalizer and record transformer consume. Keeping this as data
// lets several template versions coexist and be tested independently.
type Template struct {
	Name string `yaml:"name"`

	// RequiredLabels must all appear, exactly, in one single row of a sheet
	// for it to qualify as a board table of this template.
	RequiredLabels []string `yaml:"required_labels"`

	// TableLabels is the full canonical column vocabulary in output order.
	TableLabels []string `yaml:"table_labels"`

	BoardLabels BoardLabels `yaml:"board_labels"`

	// Taxonomy maps each canonical component category to its known synonym
	// spellings.
	Taxonomy map[string][]string `yaml:"taxonomy"`

	// SplitExempt lists component-type substrings whose rows keep their
	// multi-manufacturer cells intact (commodity passives).
	SplitExempt []string `yaml:"split_exempt"`

	// UnwantedDescriptions and UnwantedComponents drop consumable rows
	// (glue, solder, bare boards) before transformation.
	UnwantedDescriptions []string `yaml:"unwanted_descriptions"`
	UnwantedComponents   []string `yaml:"unwanted_components"`
}

// defaultTemplateYAML is the built-in version 3 template, recoverable from
// TEMPLATE_PATH for site-specific overrides.
const defaultTemplateYAML = `
name: v3
required_labels:
  - Classification
  - Designator
  - Manufacturer
  - Manufacturer P/N
table_labels:
  - Item
  - Component
  - Device Package
  - Description
  - Unit
  - Classification
  - Manufacturer
  - Manufacturer P/N
  - UL/VDE Number
  - Validated at
  - Qty
  - Designator
  - U/P (RMB W/ VAT)
  - Sub-Total (RMB W/ VAT)
board_labels:
  model_no: "Model No:"
  build_stage: "Rev:"
  board_name: "Description:"
  manufacturer: "Manufacturer:"
  date: "Date:"
  material_cost: "Material"
  overhead_cost: "OHP"
  total_cost: "Total"
taxonomy:
  Battery Terminals: [Battery Terminals]
  Buzzer: [Buzzer]
  Cable: [Cable]
  Capacitor: [Capacitor]
  Connector: [Connector]
  Crystal: [Crystal]
  Diode: [Diode, Zener, Schottky, Rectifier]
  Electromagnet: [Electromagnet]
  Foam: [Foam]
  FUSE: [FUSE, Fuse]
  Heatsink: [Heatsink]
  IC: [IC]
  Inductor: [Inductor]
  IR Receiver: [IR Receiver]
  Jumper: [Jumper]
  LCD: [LCD]
  LED: [LED]
  LED Module: [LED Module]
  MCU: [MCU]
  MOV/Varistor: [MOV, Varistor]
  Optocoupler: [Optocoupler]
  PCB: [PCB]
  Relay: [Relay]
  Resistor: [Resistor]
  Sensor: [Sensor]
  Spring: [Spring]
  Switch: [Switch]
  TCO: [TCO]
  Thermistors: [Thermistors]
  Transformer: [Transformer]
  Transistor: [Transistor]
  Triac/SCR: [Triac, SCR]
  Unknown/Misc: [Unknown, Misc]
  Voltage Regulator: [Voltage Regulator, Regulator]
  Wire: [Wire]
split_exempt: [Res, Cap, Ind]
unwanted_descriptions: [Glue, Solder, Compound, Conformal, Coating, Screw, AWG]
unwanted_components: [Foam]
`

// DefaultTemplate returns the built-in version 3 template.
func DefaultTemplate() Template {
	var tpl Template
	if err := yaml.Unmarshal([]byte(defaultTemplateYAML), &tpl); err != nil {
		panic(fmt.Sprintf("built-in template is invalid: %v", err))
	}
	return tpl
}

// LoadTemplate reads a template override from a YAML file. An empty path
// selects the built-in template.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	var tpl Template
	if err := yaml.Unmarshal(blob, &tpl); err != nil {
		return Template{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	if err := tpl.Validate(); err != nil {
		return Template{}, fmt.Errorf("template %s: %w", path, err)
	}
	return tpl, nil
}

// Validate checks the structural minimum for a usable template.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("missing template name")
	}
	if len(t.RequiredLabels) == 0 {
		return fmt.Errorf("missing required_labels")
	}
	if len(t.TableLabels) == 0 {
		return fmt.Errorf("missing table_labels")
	}
	for _, required := range t.RequiredLabels {
		found := false
		for _, label := range t.TableLabels {
			if label == required {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("required label %q is not part of table_labels", required)
		}
	}
	return nil
}

// Synonyms returns the flattened synonym list and a reverse lookup from
// synonym to its owning category. The list is sorted by category so that
// first-seen tie-breaking in the matchers is deterministic.
func (t Template) Synonyms() ([]string, map[string]string) {
	categories := make([]string, 0, len(t.Taxonomy))
	for category := range t.Taxonomy {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	flat := make([]string, 0, len(t.Taxonomy)*2)
	owner := make(map[string]string, len(t.Taxonomy)*2)
	for _, category := range categories {
		for _, synonym := range t.Taxonomy[category] {
			flat = append(flat, synonym)
			if _, seen := owner[synonym]; !seen {
				owner[synonym] = category
			}
		}
	}
	return flat, owner
}
