package pipeline

import (
	"fmt"
	"strings"

	"bomscrub/internal"
	"bomscrub/internal/util"
)

// MergeAlternates folds alternate rows into their primary row so downstream
// consumers see one row per logical board position. Records are grouped by
// their normalized designator list; within a group the first row with a
// positive quantity is the primary and zero-quantity rows are alternates
// whose manufacturer and part number are appended newline-delimited (the
// multi-manufacturer split later expands them back into explicit
// zero-quantity rows). Returns the merged records and the merge count.
func MergeAlternates(records []internal.Record) ([]internal.Record, int) {
	type group struct {
		primary int
		members []int
	}

	order := []string{}
	groups := map[string]*group{}
	for i, rec := range records {
		key := util.JoinDesignators(util.SplitDesignators(strings.ToUpper(rec.Designator)))
		if key == "" {
			// Records without designators are never alternates of anything.
			key = fmt.Sprintf("__nokey_%d", i)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{primary: -1}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, i)
		if g.primary < 0 && hasPositiveQty(rec) {
			g.primary = i
		}
	}

	merged := 0
	out := make([]internal.Record, 0, len(records))
	for _, key := range order {
		g := groups[key]
		if g.primary < 0 {
			g.primary = g.members[0]
		}
		primary := records[g.primary]
		rest := []internal.Record{}
		for _, idx := range g.members {
			if idx == g.primary {
				continue
			}
			alt := records[idx]
			if hasPositiveQty(alt) {
				// Two positive-quantity rows on one position is a real
				// duplicate; keep it for the validator to report.
				rest = append(rest, alt)
				continue
			}
			if alt.Manufacturer != "" {
				primary.Manufacturer = appendLine(primary.Manufacturer, alt.Manufacturer)
				primary.MfgPartNumber = appendLine(primary.MfgPartNumber, alt.MfgPartNumber)
			}
			merged++
		}
		out = append(out, primary)
		out = append(out, rest...)
	}
	return out, merged
}

// SplitQuantities expands each record with an integer quantity of two or
// more into one unit-quantity record per designator, preserving designator
// order. Fractional quantities are never split; they are flagged for review.
// A record whose designator count disagrees with its quantity is left intact
// for the validator to fail on.
func SplitQuantities(sheet string, records []internal.Record) ([]internal.Record, []internal.ReviewFlag, int) {
	out := make([]internal.Record, 0, len(records))
	flags := []internal.ReviewFlag{}
	split := 0

	for _, rec := range records {
		qty, ok := util.ParseQty(rec.Qty)
		if !ok || qty < 2 {
			if ok && qty > 0 && !util.IsWholeQty(qty) {
				flags = append(flags, internal.ReviewFlag{Kind: internal.ReviewFractionalQty, Sheet: sheet, Item: rec.Item, Value: rec.Qty})
			}
			out = append(out, rec)
			continue
		}
		if !util.IsWholeQty(qty) {
			flags = append(flags, internal.ReviewFlag{Kind: internal.ReviewFractionalQty, Sheet: sheet, Item: rec.Item, Value: rec.Qty})
			out = append(out, rec)
			continue
		}

		designators := util.SplitDesignators(rec.Designator)
		if len(designators) != int(qty) {
			out = append(out, rec)
			continue
		}

		for _, designator := range designators {
			unit := rec
			unit.Qty = "1"
			unit.Designator = designator
			out = append(out, unit)
		}
		split++
	}
	return out, flags, split
}

// SplitManufacturers expands a record listing several newline-delimited
// manufacturers into one record per manufacturer/part-number pair. The first
// pair keeps the quantity; the rest are alternates with quantity zero.
// Component types containing an exempt substring (commodity passives) are
// left intact. A single part number is shared across all names; any other
// count mismatch is a data defect and fails hard.
func SplitManufacturers(records []internal.Record, exempt []string) ([]internal.Record, int, error) {
	out := make([]internal.Record, 0, len(records))
	split := 0

	for _, rec := range records {
		names := splitLines(rec.Manufacturer)
		partNumbers := splitLines(rec.MfgPartNumber)

		if len(names) <= 1 || isExemptType(rec.ComponentType, exempt) {
			out = append(out, rec)
			continue
		}

		if len(partNumbers) != len(names) {
			if len(partNumbers) == 1 {
				for len(partNumbers) < len(names) {
					partNumbers = append(partNumbers, partNumbers[0])
				}
			} else {
				return nil, 0, fmt.Errorf(
					"item %q: %d manufacturer names %v but %d part numbers %v; part number count must be one or match the name count",
					rec.Item, len(names), names, len(partNumbers), partNumbers)
			}
		}

		for i, name := range names {
			clone := rec
			clone.Manufacturer = name
			clone.MfgPartNumber = partNumbers[i]
			if i != 0 {
				clone.Qty = "0"
			}
			out = append(out, clone)
		}
		split++
	}
	return out, split, nil
}

// CleanDesignators reformats each record's designator list: split on the
// separator variants, trim, uppercase, rejoin comma-separated. A designator
// that is not letter-prefixed and digit-suffixed (or the literal PCB) is a
// hard failure; guessing at a mangled designator would corrupt placement
// data.
func CleanDesignators(records []internal.Record) ([]internal.Record, error) {
	out := make([]internal.Record, len(records))
	for i, rec := range records {
		parts := util.SplitDesignators(rec.Designator)
		cleaned := make([]string, 0, len(parts))
		for _, part := range parts {
			designator := strings.ToUpper(part)
			if !util.IsValidDesignator(designator) {
				return nil, fmt.Errorf("item %q: invalid reference designator %q", rec.Item, part)
			}
			cleaned = append(cleaned, designator)
		}
		rec.Designator = util.JoinDesignators(cleaned)
		out[i] = rec
	}
	return out, nil
}

// DropEmptyDesignator removes records with no reference designator.
func DropEmptyDesignator(records []internal.Record) []internal.Record {
	return filterRecords(records, func(rec internal.Record) bool {
		return strings.TrimSpace(rec.Designator) != ""
	})
}

// DropZeroQty removes records with an empty or zero quantity: unselected
// alternates carry no placement.
func DropZeroQty(records []internal.Record) []internal.Record {
	return filterRecords(records, func(rec internal.Record) bool {
		qty, ok := util.ParseQty(rec.Qty)
		if !ok {
			return strings.TrimSpace(rec.Qty) != ""
		}
		return qty != 0
	})
}

// DropSubUnitQty removes fractional sub-one quantities (shared hardware
// lots), which have no meaning as standalone database rows.
func DropSubUnitQty(records []internal.Record) []internal.Record {
	return filterRecords(records, func(rec internal.Record) bool {
		qty, ok := util.ParseQty(rec.Qty)
		return !ok || qty >= 1
	})
}

// DropUnwanted removes consumable rows by description or component-type
// substring, case-insensitively.
func DropUnwanted(records []internal.Record, descriptions, components []string) []internal.Record {
	return filterRecords(records, func(rec internal.Record) bool {
		return !containsAny(rec.Description, descriptions) && !containsAny(rec.ComponentType, components)
	})
}

// MergeTypeIntoDescription appends the component type to the description when
// the description does not already mention it.
func MergeTypeIntoDescription(records []internal.Record) []internal.Record {
	out := make([]internal.Record, len(records))
	for i, rec := range records {
		if rec.ComponentType != "" &&
			!strings.Contains(strings.ToLower(rec.Description), strings.ToLower(rec.ComponentType)) {
			rec.Description = rec.Description + "," + rec.ComponentType
		}
		out[i] = rec
	}
	return out
}

// StripPartNumbersFromDescription removes every part number appearing in the
// table from every description, so descriptions stay free of duplicated
// part data. Quadratic over records, which is fine at BOM sizes.
func StripPartNumbersFromDescription(records []internal.Record) []internal.Record {
	out := append([]internal.Record(nil), records...)

	for _, pattern := range records {
		pn := strings.TrimSpace(pattern.MfgPartNumber)
		if pn == "" {
			continue
		}
		for i := range out {
			desc := out[i].Description
			desc = strings.ReplaceAll(desc, pn+",", "")
			desc = strings.ReplaceAll(desc, ","+pn, "")
			desc = strings.ReplaceAll(desc, ", "+pn, "")
			desc = strings.ReplaceAll(desc, pn, "")
			out[i].Description = desc
		}
	}
	return out
}

func filterRecords(records []internal.Record, keep func(internal.Record) bool) []internal.Record {
	out := make([]internal.Record, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func containsAny(value string, substrings []string) bool {
	lower := strings.ToLower(value)
	for _, s := range substrings {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func isExemptType(componentType string, exempt []string) bool {
	return containsAny(componentType, exempt)
}

func hasPositiveQty(rec internal.Record) bool {
	qty, ok := util.ParseQty(rec.Qty)
	return ok && qty > 0
}

func splitLines(value string) []string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	parts := strings.Split(value, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendLine(existing, addition string) string {
	if existing == "" {
		return addition
	}
	if addition == "" {
		return existing
	}
	return existing + "\n" + addition
}
