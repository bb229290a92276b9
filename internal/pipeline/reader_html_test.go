package pipeline

import (
	"strings"
	"testing"
)

func TestReadHTMLTables(t *testing.T) {
	doc := `<html><body>
<table>
  <caption>Main</caption>
  <tr><th>Model No:</th><th>X-100</th></tr>
  <tr><td>Classification</td><td>Designator</td><td>Manufacturer</td><td>Manufacturer P/N</td></tr>
  <tr><td>A</td><td>R1</td><td>Acme</td><td>RC-0805</td></tr>
</table>
<table>
  <tr><td>no caption</td></tr>
</table>
</body></html>`

	sheets, err := ReadHTMLTables(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 2 {
		t.Fatalf("tables = %d", len(sheets))
	}
	if sheets[0].Name != "Main" {
		t.Fatalf("name = %q", sheets[0].Name)
	}
	if sheets[1].Name != "table-2" {
		t.Fatalf("fallback name = %q", sheets[1].Name)
	}
	if len(sheets[0].Grid) != 3 {
		t.Fatalf("rows = %d", len(sheets[0].Grid))
	}
	if sheets[0].Grid[2][2] != "Acme" {
		t.Fatalf("cell = %q", sheets[0].Grid[2][2])
	}
}

func TestReadHTMLTablesNone(t *testing.T) {
	if _, err := ReadHTMLTables(strings.NewReader("<html><body><p>nothing</p></body></html>")); err == nil {
		t.Fatal("expected failure on document without tables")
	}
}
