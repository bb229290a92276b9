package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bomscrub/internal"
)

// ExportBomToXLSX writes one sheet per board: the metadata block, a blank
// row, the canonical header row, then the records. Review flags, when
// present, go on a trailing Review sheet.
func ExportBomToXLSX(bom internal.Bom, flags []internal.ReviewFlag, outputPath string) error {
	f := excelize.NewFile()

	for i, board := range bom.Boards {
		sheet := board.SheetName
		if sheet == "" {
			sheet = fmt.Sprintf("Board%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		writeBoardSheet(f, sheet, board)
	}

	if len(flags) > 0 {
		if _, err := f.NewSheet("Review"); err != nil {
			return err
		}
		writeReviewSheet(f, flags)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeBoardSheet(f *excelize.File, sheet string, board internal.Board) {
	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}

	metadata := []struct {
		label string
		value string
	}{
		{"Model No:", board.Header.ModelNo},
		{"Description:", board.Header.BoardName},
		{"Manufacturer:", board.Header.Manufacturer},
		{"Rev:", board.Header.BuildStage},
		{"Date:", board.Header.Date},
		{"Material", board.Header.MaterialCost},
		{"OHP", board.Header.OverheadCost},
		{"Total", board.Header.TotalCost},
	}
	row := 1
	for _, m := range metadata {
		if m.value == "" {
			continue
		}
		set(1, row, m.label)
		set(2, row, m.value)
		row++
	}
	row++ // blank row between metadata and table

	headers := []string{
		labelItem, labelComponent, labelPackage, labelDescription, labelUnit,
		labelClassification, labelManufacturer, labelMfgPartNo, labelULVDE, labelValidatedAt,
		labelQty, labelDesignator, labelUnitPrice, labelSubTotal,
	}
	for col, h := range headers {
		set(col+1, row, h)
	}
	row++

	for _, rec := range board.Records {
		values := []string{
			rec.Item, rec.ComponentType, rec.DevicePackage, rec.Description, rec.Unit,
			rec.Classification, rec.Manufacturer, rec.MfgPartNumber, rec.ULVDENumber, rec.ValidatedAt,
			rec.Qty, rec.Designator, rec.UnitPrice, rec.SubTotal,
		}
		for col, v := range values {
			set(col+1, row, v)
		}
		row++
	}
}

func writeReviewSheet(f *excelize.File, flags []internal.ReviewFlag) {
	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue("Review", cell, value)
	}

	headers := []string{"kind", "sheet", "item", "value"}
	for col, h := range headers {
		set(col+1, 1, h)
	}
	for i, flag := range flags {
		set(1, i+2, string(flag.Kind))
		set(2, i+2, flag.Sheet)
		set(3, i+2, flag.Item)
		set(4, i+2, flag.Value)
	}
}
