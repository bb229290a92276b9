package pipeline

import (
	"fmt"
	"strings"

	"bomscrub/internal"
	"bomscrub/internal/util"
)

// ValidateBoard runs the whole-table integrity checks after all
// transformations. Both abort the run on failure: quantity/designator
// mismatches and duplicate designators mean the source file is wrong, and
// auto-correcting part data would mask the defect.
func ValidateBoard(board internal.Board) error {
	if err := CheckQuantities(board.Records); err != nil {
		return fmt.Errorf("sheet %s: %w", board.SheetName, err)
	}
	if err := CheckDuplicateDesignators(board.Records); err != nil {
		return fmt.Errorf("sheet %s: %w", board.SheetName, err)
	}
	return nil
}

// CheckQuantities verifies that every record's declared quantity equals its
// designator count. Records with an empty or zero quantity are exempt: they
// are alternates with no physical instance.
func CheckQuantities(records []internal.Record) error {
	for _, rec := range records {
		if strings.TrimSpace(rec.Qty) == "" {
			continue
		}
		qty, ok := util.ParseQty(rec.Qty)
		if !ok {
			return fmt.Errorf("item %q: quantity %q is not numeric", rec.Item, rec.Qty)
		}
		if qty == 0 {
			continue
		}
		if !util.IsWholeQty(qty) {
			// Fractional quantities (shared hardware) can never equal a
			// designator count; they are flagged for review at split time.
			continue
		}
		count := len(util.SplitDesignators(rec.Designator))
		if float64(count) != qty {
			return fmt.Errorf("item %q: quantity %s does not match %d designators (%s)", rec.Item, rec.Qty, count, rec.Designator)
		}
	}
	return nil
}

// CheckDuplicateDesignators verifies that no designator appears in more than
// one record. Zero-quantity alternate rows are excluded; they intentionally
// repeat their primary's designators. Duplicates can only be detected once
// the full table is assembled, so this is a whole-table pass.
func CheckDuplicateDesignators(records []internal.Record) error {
	seen := map[string]struct{}{}
	duplicates := []string{}
	for _, rec := range records {
		if !hasPositiveQty(rec) {
			continue
		}
		for _, designator := range util.SplitDesignators(rec.Designator) {
			if _, dup := seen[designator]; dup {
				duplicates = append(duplicates, designator)
				continue
			}
			seen[designator] = struct{}{}
		}
	}
	if len(duplicates) > 0 {
		return fmt.Errorf("duplicate reference designators: %s", strings.Join(duplicates, ", "))
	}
	return nil
}
