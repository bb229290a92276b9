package pipeline

import (
	"fmt"
	"strings"

	"bomscrub/internal"
	"bomscrub/internal/grid"
	"bomscrub/internal/match"
)

// ResolveLabels maps each raw column label to its canonical vocabulary entry
// using the two-matcher consensus. Labels with no consensus resolve to "".
// Embedded line breaks are stripped before matching; spreadsheet headers wrap
// freely.
func ResolveLabels(rawLabels []string, vocabulary []string) []string {
	resolved := make([]string, len(rawLabels))
	for i, raw := range rawLabels {
		candidate := strings.ReplaceAll(raw, "\n", "")
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if canonical, ok := match.Consensus(candidate, vocabulary); ok {
			resolved[i] = canonical
		}
	}
	return resolved
}

// ResolvedTable holds a table block whose columns have been renamed to the
// canonical vocabulary. Unresolved columns are carried so callers can flag
// them; they are excluded from record construction.
type ResolvedTable struct {
	// Columns maps canonical label to source column index.
	Columns map[string]int
	// Unresolved lists raw labels that found no consensus match.
	Unresolved []string
	// Rows are the data rows below the header.
	Rows grid.Grid
}

// ResolveTable renames the header row of a table block against the canonical
// vocabulary. Two raw columns resolving to the same canonical label is a
// structural defect: downstream field access would be ambiguous.
func ResolveTable(table grid.Grid, vocabulary []string) (ResolvedTable, error) {
	if len(table) == 0 {
		return ResolvedTable{}, fmt.Errorf("resolve table: empty table block")
	}

	header := table[0]
	resolved := ResolveLabels(header, vocabulary)

	out := ResolvedTable{Columns: map[string]int{}, Rows: table[1:]}
	for col, canonical := range resolved {
		if canonical == "" {
			if strings.TrimSpace(header[col]) != "" {
				out.Unresolved = append(out.Unresolved, header[col])
			}
			continue
		}
		if prev, dup := out.Columns[canonical]; dup {
			return ResolvedTable{}, fmt.Errorf("resolve table: columns %d and %d both map to %q", prev, col, canonical)
		}
		out.Columns[canonical] = col
	}
	return out, nil
}

// Records converts the data rows into canonical records, reading each field
// through the resolved column mapping. Missing cells become "".
func (t ResolvedTable) Records() []internal.Record {
	records := make([]internal.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, internal.Record{
			Item:           t.cell(row, labelItem),
			ComponentType:  t.cell(row, labelComponent),
			DevicePackage:  t.cell(row, labelPackage),
			Description:    t.cell(row, labelDescription),
			Unit:           t.cell(row, labelUnit),
			Classification: t.cell(row, labelClassification),
			Manufacturer:   t.cell(row, labelManufacturer),
			MfgPartNumber:  t.cell(row, labelMfgPartNo),
			ULVDENumber:    t.cell(row, labelULVDE),
			ValidatedAt:    t.cell(row, labelValidatedAt),
			Qty:            t.cell(row, labelQty),
			Designator:     t.cell(row, labelDesignator),
			UnitPrice:      t.cell(row, labelUnitPrice),
			SubTotal:       t.cell(row, labelSubTotal),
		})
	}
	return records
}

func (t ResolvedTable) cell(row []string, label string) string {
	col, ok := t.Columns[label]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
