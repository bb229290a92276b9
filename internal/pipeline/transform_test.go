package pipeline

import (
	"strings"
	"testing"

	"bomscrub/internal"
)

func TestMergeAlternates(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "2", Designator: "R1,R2", Manufacturer: "Acme", MfgPartNumber: "A-100"},
		{Item: "1a", Qty: "0", Designator: "R1, R2", Manufacturer: "Beta", MfgPartNumber: "B-200"},
		{Item: "2", Qty: "1", Designator: "C1", Manufacturer: "Gamma", MfgPartNumber: "G-300"},
	}

	merged, count := MergeAlternates(records)
	if count != 1 {
		t.Fatalf("merged = %d", count)
	}
	if len(merged) != 2 {
		t.Fatalf("records = %d: %+v", len(merged), merged)
	}
	if merged[0].Manufacturer != "Acme\nBeta" || merged[0].MfgPartNumber != "A-100\nB-200" {
		t.Fatalf("primary: %+v", merged[0])
	}
	if merged[0].Qty != "2" {
		t.Fatalf("primary qty: %q", merged[0].Qty)
	}
}

func TestMergeAlternatesKeepsPositiveDuplicates(t *testing.T) {
	// Two placed rows on the same designators is a defect the validator
	// reports; the merge must not hide it.
	records := []internal.Record{
		{Item: "1", Qty: "1", Designator: "C5", Manufacturer: "Acme"},
		{Item: "2", Qty: "1", Designator: "C5", Manufacturer: "Beta"},
	}
	merged, count := MergeAlternates(records)
	if count != 0 || len(merged) != 2 {
		t.Fatalf("count=%d records=%d", count, len(merged))
	}
}

func TestSplitQuantities(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "3", Designator: "R1, R2, R3"},
		{Item: "2", Qty: "1", Designator: "C1"},
	}

	out, flags, split := SplitQuantities("Sheet1", records)
	if split != 1 || len(flags) != 0 {
		t.Fatalf("split=%d flags=%v", split, flags)
	}
	if len(out) != 4 {
		t.Fatalf("records = %d: %+v", len(out), out)
	}
	want := []string{"R1", "R2", "R3"}
	for i, designator := range want {
		if out[i].Qty != "1" || out[i].Designator != designator {
			t.Fatalf("unit record %d: %+v", i, out[i])
		}
	}
	if out[3].Designator != "C1" {
		t.Fatalf("untouched record: %+v", out[3])
	}
}

func TestSplitQuantitiesFractionalFlagged(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "0.5", Designator: "PCB"},
	}
	out, flags, split := SplitQuantities("Sheet1", records)
	if split != 0 || len(out) != 1 {
		t.Fatalf("split=%d records=%d", split, len(out))
	}
	if len(flags) != 1 || flags[0].Kind != internal.ReviewFractionalQty {
		t.Fatalf("flags = %+v", flags)
	}
}

func TestSplitQuantitiesCountMismatchLeftIntact(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "3", Designator: "R1, R2"},
	}
	out, _, split := SplitQuantities("Sheet1", records)
	if split != 0 || len(out) != 1 || out[0].Qty != "3" {
		t.Fatalf("mismatched record must stay intact: %+v", out)
	}
}

func TestSplitManufacturers(t *testing.T) {
	records := []internal.Record{
		{Item: "1", ComponentType: "Relay", Qty: "1", Designator: "K1",
			Manufacturer: "Acme\nBeta", MfgPartNumber: "111\n222"},
	}
	out, split, err := SplitManufacturers(records, []string{"Res", "Cap", "Ind"})
	if err != nil {
		t.Fatal(err)
	}
	if split != 1 || len(out) != 2 {
		t.Fatalf("split=%d records=%d", split, len(out))
	}
	if out[0].Manufacturer != "Acme" || out[0].MfgPartNumber != "111" || out[0].Qty != "1" {
		t.Fatalf("first: %+v", out[0])
	}
	if out[1].Manufacturer != "Beta" || out[1].MfgPartNumber != "222" || out[1].Qty != "0" {
		t.Fatalf("second: %+v", out[1])
	}
}

func TestSplitManufacturersSharedPartNumber(t *testing.T) {
	records := []internal.Record{
		{Item: "1", ComponentType: "Diode", Qty: "2", Designator: "D1,D2",
			Manufacturer: "Acme\nBeta", MfgPartNumber: "1N4148"},
	}
	out, _, err := SplitManufacturers(records, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].MfgPartNumber != "1N4148" || out[1].MfgPartNumber != "1N4148" {
		t.Fatalf("shared part number: %+v", out)
	}
}

func TestSplitManufacturersExemptType(t *testing.T) {
	records := []internal.Record{
		{Item: "1", ComponentType: "Capacitor", Qty: "1", Designator: "C1",
			Manufacturer: "Acme\nBeta", MfgPartNumber: "111\n222"},
	}
	out, split, err := SplitManufacturers(records, []string{"Res", "Cap", "Ind"})
	if err != nil {
		t.Fatal(err)
	}
	if split != 0 || len(out) != 1 {
		t.Fatalf("exempt type was split: %+v", out)
	}
}

func TestSplitManufacturersCountMismatch(t *testing.T) {
	records := []internal.Record{
		{Item: "7", ComponentType: "Relay", Qty: "1", Designator: "K1",
			Manufacturer: "Acme\nBeta\nGamma", MfgPartNumber: "111\n222"},
	}
	_, _, err := SplitManufacturers(records, nil)
	if err == nil {
		t.Fatal("expected hard failure")
	}
	if !strings.Contains(err.Error(), `"7"`) {
		t.Fatalf("error should name the item: %v", err)
	}
}

func TestCleanDesignators(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Designator: "r1; r2 , led3"},
		{Item: "2", Designator: "pcb"},
	}
	out, err := CleanDesignators(records)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Designator != "R1,R2,LED3" {
		t.Fatalf("got %q", out[0].Designator)
	}
	if out[1].Designator != "PCB" {
		t.Fatalf("got %q", out[1].Designator)
	}
}

func TestCleanDesignatorsInvalid(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Designator: "R1, 9X"},
	}
	if _, err := CleanDesignators(records); err == nil {
		t.Fatal("expected hard failure on malformed designator")
	}
}

func TestDrops(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "2", Designator: "R1,R2", Description: "10K"},
		{Item: "2", Qty: "0", Designator: "C1", Description: "alt"},
		{Item: "3", Qty: "1", Designator: "", Description: "no position"},
		{Item: "4", Qty: "0.5", Designator: "PCB", Description: "shared screw lot"},
	}

	out := DropEmptyDesignator(records)
	if len(out) != 3 {
		t.Fatalf("DropEmptyDesignator: %d", len(out))
	}
	out = DropZeroQty(out)
	if len(out) != 2 {
		t.Fatalf("DropZeroQty: %d", len(out))
	}
	// Fractional quantities survive the zero drop but not the sub-unit drop.
	out = DropSubUnitQty(out)
	if len(out) != 1 || out[0].Item != "1" {
		t.Fatalf("DropSubUnitQty: %+v", out)
	}
}

func TestDropUnwanted(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Description: "Thermal GLUE pad", ComponentType: "Misc"},
		{Item: "2", Description: "10K resistor", ComponentType: "Resistor"},
		{Item: "3", Description: "padding", ComponentType: "Foam"},
	}
	out := DropUnwanted(records, []string{"Glue"}, []string{"Foam"})
	if len(out) != 1 || out[0].Item != "2" {
		t.Fatalf("got %+v", out)
	}
}

func TestMergeTypeIntoDescription(t *testing.T) {
	records := []internal.Record{
		{Description: "10K 1%", ComponentType: "Resistor"},
		{Description: "Power resistor 5W", ComponentType: "Resistor"},
	}
	out := MergeTypeIntoDescription(records)
	if out[0].Description != "10K 1%,Resistor" {
		t.Fatalf("got %q", out[0].Description)
	}
	if out[1].Description != "Power resistor 5W" {
		t.Fatalf("already mentioned type must not be appended: %q", out[1].Description)
	}
}

func TestStripPartNumbersFromDescription(t *testing.T) {
	records := []internal.Record{
		{Description: "Diode 1N4148, SOD-323", MfgPartNumber: "1N4148"},
		{Description: "Array of 1N4148 clones", MfgPartNumber: "OTHER-1"},
	}
	out := StripPartNumbersFromDescription(records)
	if strings.Contains(out[0].Description, "1N4148") {
		t.Fatalf("own part number kept: %q", out[0].Description)
	}
	if strings.Contains(out[1].Description, "1N4148") {
		t.Fatalf("foreign part number kept: %q", out[1].Description)
	}
}
