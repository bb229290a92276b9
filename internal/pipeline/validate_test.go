package pipeline

import (
	"strings"
	"testing"

	"bomscrub/internal"
)

func TestCheckQuantities(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "2", Designator: "R1,R2"},
		{Item: "2", Qty: "1", Designator: "C1"},
		{Item: "3", Qty: "0", Designator: "C1"},
		{Item: "4", Qty: "", Designator: "D1"},
		{Item: "5", Qty: "0.5", Designator: "PCB"},
	}
	if err := CheckQuantities(records); err != nil {
		t.Fatal(err)
	}
}

func TestCheckQuantitiesMismatch(t *testing.T) {
	records := []internal.Record{
		{Item: "9", Qty: "3", Designator: "R1,R2"},
	}
	err := CheckQuantities(records)
	if err == nil {
		t.Fatal("expected mismatch failure")
	}
	if !strings.Contains(err.Error(), `"9"`) || !strings.Contains(err.Error(), "R1,R2") {
		t.Fatalf("error should name item and designators: %v", err)
	}
}

func TestCheckQuantitiesNonNumeric(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "TBD", Designator: "R1"},
	}
	if err := CheckQuantities(records); err == nil {
		t.Fatal("expected failure on non-numeric quantity")
	}
}

func TestCheckDuplicateDesignators(t *testing.T) {
	records := []internal.Record{
		{Item: "1", Qty: "2", Designator: "R1,R2"},
		{Item: "2", Qty: "1", Designator: "C5"},
		{Item: "3", Qty: "1", Designator: "C5"},
	}
	err := CheckDuplicateDesignators(records)
	if err == nil {
		t.Fatal("expected duplicate failure")
	}
	if !strings.Contains(err.Error(), "C5") {
		t.Fatalf("error should name the duplicate: %v", err)
	}
}

func TestCheckDuplicateDesignatorsIgnoresAlternates(t *testing.T) {
	// A zero-quantity alternate repeats its primary's designators on purpose.
	records := []internal.Record{
		{Item: "1", Qty: "1", Designator: "K1", Manufacturer: "Acme"},
		{Item: "1", Qty: "0", Designator: "K1", Manufacturer: "Beta"},
	}
	if err := CheckDuplicateDesignators(records); err != nil {
		t.Fatal(err)
	}
}

func TestValidateBoardNamesSheet(t *testing.T) {
	board := internal.Board{
		SheetName: "Main",
		Records: []internal.Record{
			{Item: "1", Qty: "2", Designator: "R1"},
		},
	}
	err := ValidateBoard(board)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "Main") {
		t.Fatalf("error should name the sheet: %v", err)
	}
}
