package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"bomscrub/internal/grid"
)

// ReadWorkbook loads every sheet of an xlsx workbook as a grid. Cell values
// arrive as strings; empty and merged-away cells come back as "".
func ReadWorkbook(path string) ([]grid.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readSheets(f)
}

// ReadWorkbookFrom is ReadWorkbook over an in-memory blob.
func ReadWorkbookFrom(r io.Reader) ([]grid.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readSheets(f)
}

func readSheets(f *excelize.File) ([]grid.Sheet, error) {
	sheets := make([]grid.Sheet, 0, len(f.GetSheetList()))
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		g := make(grid.Grid, 0, len(rows))
		for _, row := range rows {
			g = append(g, row)
		}
		sheets = append(sheets, grid.Sheet{Name: name, Grid: g})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return sheets, nil
}

// ReadHTMLTables extracts every <table> of an HTML document as a grid.
// Spreadsheets saved as HTML keep their cell layout in table rows, so the
// same locator works on them unchanged.
func ReadHTMLTables(r io.Reader) ([]grid.Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	sheets := []grid.Sheet{}
	doc.Find("table").Each(func(tableIdx int, table *goquery.Selection) {
		g := grid.Grid{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			g = append(g, cells)
		})
		if len(g) == 0 {
			return
		}
		name := strings.TrimSpace(table.Find("caption").First().Text())
		if name == "" {
			name = fmt.Sprintf("table-%d", tableIdx+1)
		}
		sheets = append(sheets, grid.Sheet{Name: name, Grid: g})
	})

	if len(sheets) == 0 {
		return nil, fmt.Errorf("document has no tables")
	}
	return sheets, nil
}
