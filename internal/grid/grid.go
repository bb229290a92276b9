// Package grid locates the real BOM table inside a loosely formatted sheet.
// Human-authored workbooks bury the header row under metadata blocks, so the
// locator scores every row by fuzzy label overlap and slices the sheet at the
// best one.
package grid

import (
	"fmt"
	"strings"

	"bomscrub/internal/util"
)

// NoBestMatchRow is returned when no row matches any label.
const NoBestMatchRow = -1

// Grid is one sheet as an ordered sequence of rows of string cells. Cells are
// normalized to strings at the read boundary; a missing cell is "".
type Grid [][]string

// Sheet pairs a grid with the workbook sheet it came from.
type Sheet struct {
	Name string
	Grid Grid
}

// FindRowWithMostLabelMatches returns the index of the row containing the
// most labels, where a label matches when its normalized form occurs as a
// substring of any normalized cell in the row. Each label counts at most once
// per row. Ties keep the earliest row; NoBestMatchRow when nothing matches.
func FindRowWithMostLabelMatches(g Grid, labels []string) int {
	normalized := normalizeAll(labels)

	bestRow := NoBestMatchRow
	bestCount := 0
	for rowIdx, row := range g {
		cells := normalizeAll(row)
		count := 0
		for _, label := range normalized {
			if label == "" {
				continue
			}
			for _, cell := range cells {
				if strings.Contains(cell, label) {
					count++
					break
				}
			}
		}
		if count > bestCount {
			bestCount = count
			bestRow = rowIdx
		}
	}
	return bestRow
}

// UnmatchedLabelsInBestRow re-checks the best-scoring row with exact
// normalized equality and returns the required labels it does not carry.
// When no row matches at all, every label is unmatched.
func UnmatchedLabelsInBestRow(g Grid, required []string) []string {
	bestRow := FindRowWithMostLabelMatches(g, required)
	if bestRow == NoBestMatchRow {
		return required
	}

	cells := normalizeAll(g[bestRow])
	unmatched := make([]string, 0)
	for _, label := range required {
		found := false
		for _, cell := range cells {
			if util.NormalizeLabel(label) == cell {
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, label)
		}
	}
	return unmatched
}

// HasAllLabels reports whether one single row carries every required label as
// an exact normalized match. Partial or cross-row headers never qualify.
func HasAllLabels(g Grid, required []string) bool {
	return len(UnmatchedLabelsInBestRow(g, required)) == 0
}

// ExtractHeader returns the metadata block: all rows strictly above the best
// label row. A sheet whose table starts on the first row has no metadata and
// is invalid input.
func ExtractHeader(g Grid, labels []string) (Grid, error) {
	bestRow := FindRowWithMostLabelMatches(g, labels)
	if bestRow <= 0 {
		return nil, fmt.Errorf("header extraction failed: no metadata rows above table header (labels: %s)", strings.Join(labels, ", "))
	}
	return g[:bestRow], nil
}

// ExtractTable returns the table block: the best label row and everything
// below it. A table with a header but no data rows is invalid input.
func ExtractTable(g Grid, labels []string) (Grid, error) {
	bestRow := FindRowWithMostLabelMatches(g, labels)
	if bestRow == NoBestMatchRow || bestRow >= len(g) {
		return nil, fmt.Errorf("table extraction failed: table header row not found (labels: %s)", strings.Join(labels, ", "))
	}
	table := g[bestRow:]
	if len(table) <= 1 {
		return nil, fmt.Errorf("table extraction failed: no data rows below header")
	}
	return table, nil
}

// Flatten returns every cell of the grid in row order. Used to scan metadata
// blocks for label/value pairs without caring about their layout.
func Flatten(g Grid) []string {
	out := make([]string, 0, len(g)*8)
	for _, row := range g {
		out = append(out, row...)
	}
	return out
}

// LabelValue finds a label in a flattened block by exact normalized match and
// returns the next non-empty cell after it. An absent label yields "" — most
// metadata labels are optional — but a matched label with no value following
// it is a data defect.
func LabelValue(flat []string, label string) (string, error) {
	labelIdx := -1
	want := util.NormalizeLabel(label)
	for i, cell := range flat {
		if util.NormalizeLabel(cell) == want {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return "", nil
	}

	for i := labelIdx + 1; i < len(flat); i++ {
		if strings.TrimSpace(flat[i]) != "" {
			return flat[i], nil
		}
	}
	return "", fmt.Errorf("no value found for label %q at index %d", label, labelIdx)
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = util.NormalizeLabel(v)
	}
	return out
}
