package pipeline

import (
	"fmt"

	"bomscrub/internal"
	"bomscrub/internal/config"
	"bomscrub/internal/grid"
	"bomscrub/internal/util"
)

// Canonical version 3 column labels as they appear in the template.
const (
	labelItem           = "Item"
	labelComponent      = "Component"
	labelPackage        = "Device Package"
	labelDescription    = "Description"
	labelUnit           = "Unit"
	labelClassification = "Classification"
	labelManufacturer   = "Manufacturer"
	labelMfgPartNo      = "Manufacturer P/N"
	labelULVDE          = "UL/VDE Number"
	labelValidatedAt    = "Validated at"
	labelQty            = "Qty"
	labelDesignator     = "Designator"
	labelUnitPrice      = "U/P (RMB W/ VAT)"
	labelSubTotal       = "Sub-Total (RMB W/ VAT)"
)

// IsV3BOM reports whether any sheet carries all of the template's required
// identifiers, exactly matched, in one single row.
func IsV3BOM(sheets []grid.Sheet, tpl config.Template) bool {
	for _, sheet := range sheets {
		if grid.HasAllLabels(sheet.Grid, tpl.RequiredLabels) {
			return true
		}
	}
	return false
}

// ParseBOM converts every qualifying board sheet of a workbook into a Board
// and aggregates them. Sheets missing the required identifiers are skipped;
// a workbook yielding no boards at all is an error.
func ParseBOM(fileName string, sheets []grid.Sheet, tpl config.Template) (internal.Bom, []internal.ReviewFlag, error) {
	bom := internal.Bom{FileName: fileName}
	flags := []internal.ReviewFlag{}

	for _, sheet := range sheets {
		if !grid.HasAllLabels(sheet.Grid, tpl.RequiredLabels) {
			continue
		}
		board, boardFlags, err := parseBoardSheet(sheet, tpl)
		if err != nil {
			return internal.Bom{}, nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
		bom.Boards = append(bom.Boards, board)
		flags = append(flags, boardFlags...)
	}

	if len(bom.Boards) == 0 {
		return internal.Bom{}, nil, fmt.Errorf("no board sheets found in %s", fileName)
	}
	return bom, flags, nil
}

func parseBoardSheet(sheet grid.Sheet, tpl config.Template) (internal.Board, []internal.ReviewFlag, error) {
	metadata, err := grid.ExtractHeader(sheet.Grid, tpl.RequiredLabels)
	if err != nil {
		return internal.Board{}, nil, err
	}
	header, err := parseBoardHeader(metadata, tpl.BoardLabels)
	if err != nil {
		return internal.Board{}, nil, err
	}

	table, err := grid.ExtractTable(sheet.Grid, tpl.RequiredLabels)
	if err != nil {
		return internal.Board{}, nil, err
	}
	resolved, err := ResolveTable(table, tpl.TableLabels)
	if err != nil {
		return internal.Board{}, nil, err
	}

	flags := make([]internal.ReviewFlag, 0, len(resolved.Unresolved))
	for _, raw := range resolved.Unresolved {
		flags = append(flags, internal.ReviewFlag{
			Kind:  internal.ReviewUnmatchedColumn,
			Sheet: sheet.Name,
			Value: raw,
		})
	}

	return internal.Board{
		SheetName: sheet.Name,
		Header:    header,
		Records:   resolved.Records(),
	}, flags, nil
}

func parseBoardHeader(metadata grid.Grid, labels config.BoardLabels) (internal.BoardHeader, error) {
	flat := grid.Flatten(metadata)

	var header internal.BoardHeader
	fields := []struct {
		label string
		dst   *string
	}{
		{labels.ModelNo, &header.ModelNo},
		{labels.BoardName, &header.BoardName},
		{labels.Manufacturer, &header.Manufacturer},
		{labels.BuildStage, &header.BuildStage},
		{labels.Date, &header.Date},
		{labels.MaterialCost, &header.MaterialCost},
		{labels.OverheadCost, &header.OverheadCost},
		{labels.TotalCost, &header.TotalCost},
	}
	for _, f := range fields {
		if f.label == "" {
			continue
		}
		value, err := grid.LabelValue(flat, f.label)
		if err != nil {
			return internal.BoardHeader{}, err
		}
		*f.dst = util.NormalizeSpaces(value)
	}
	return header, nil
}
