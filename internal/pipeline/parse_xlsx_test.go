package pipeline

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"bomscrub/internal/config"
)

type fixtureSheet struct {
	name string
	rows [][]any
}

func mkXLSX(t *testing.T, sheets []fixtureSheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				t.Fatal(err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			t.Fatal(err)
		}
		for r, row := range sheet.rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				_ = f.SetCellValue(sheet.name, cell, v)
			}
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func boardRows() [][]any {
	return [][]any{
		{"Model No:", "X-100"},
		{"Description:", "Main Board"},
		{"Manufacturer:", "Acme Electronics"},
		{"Rev:", "P2"},
		{"Date:", "2026-01-15"},
		{},
		{"Item", "Component", "Device Package", "Description", "Unit", "Classification",
			"Manufacturer", "Manufacturer P/N", "UL/VDE Number", "Validated at",
			"Qty", "Designator", "U/P (RMB W/ VAT)", "Sub-Total (RMB W/ VAT)"},
		{"1", "Resistor", "0805", "10K 1%", "pcs", "R",
			"Acme", "RC0805FR-0710KL", "", "",
			"2", "R1, R2", "0.01", "0.02"},
		{"2", "Zener", "SOD-323", "5V1 500mW", "pcs", "D",
			"Beta", "BZT52C5V1", "", "",
			"1", "D1", "0.02", "0.02"},
	}
}

func TestParseBOM(t *testing.T) {
	blob := mkXLSX(t, []fixtureSheet{
		{name: "Main", rows: boardRows()},
		{name: "Notes", rows: [][]any{{"free text", "nothing tabular"}}},
	})

	sheets, err := ReadWorkbookFrom(bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d", len(sheets))
	}

	tpl := config.DefaultTemplate()
	if !IsV3BOM(sheets, tpl) {
		t.Fatal("workbook must qualify")
	}

	bom, flags, err := ParseBOM("fixture.xlsx", sheets, tpl)
	if err != nil {
		t.Fatal(err)
	}
	if len(bom.Boards) != 1 {
		t.Fatalf("boards = %d", len(bom.Boards))
	}
	if len(flags) != 0 {
		t.Fatalf("flags = %+v", flags)
	}

	board := bom.Boards[0]
	if board.SheetName != "Main" {
		t.Fatalf("sheet = %q", board.SheetName)
	}
	if board.Header.ModelNo != "X-100" || board.Header.BoardName != "Main Board" ||
		board.Header.Manufacturer != "Acme Electronics" || board.Header.BuildStage != "P2" {
		t.Fatalf("header: %+v", board.Header)
	}
	if board.Header.MaterialCost != "" {
		t.Fatalf("absent metadata label must stay empty: %+v", board.Header)
	}

	if len(board.Records) != 2 {
		t.Fatalf("records = %d", len(board.Records))
	}
	first := board.Records[0]
	if first.ComponentType != "Resistor" || first.Qty != "2" || first.Designator != "R1, R2" {
		t.Fatalf("first record: %+v", first)
	}
}

func TestParseBOMNoBoards(t *testing.T) {
	blob := mkXLSX(t, []fixtureSheet{
		{name: "Notes", rows: [][]any{{"free text"}}},
	})
	sheets, err := ReadWorkbookFrom(bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ParseBOM("fixture.xlsx", sheets, config.DefaultTemplate()); err == nil {
		t.Fatal("expected failure on workbook without board sheets")
	}
}
