package util

import (
	"strconv"
	"strings"
)

// ParseQty parses a quantity cell. Sheets in this domain write quantities as
// bare numbers but occasionally with a decimal comma or surrounding
// whitespace. Returns ok=false for empty or non-numeric cells.
func ParseQty(input string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(input, "\u00a0", " "))
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	qty, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return qty, true
}

// IsWholeQty reports whether a parsed quantity is an exact integer.
// Fractional quantities (shared hardware, glue lots) are never split.
func IsWholeQty(qty float64) bool {
	return qty == float64(int64(qty))
}

// FormatQty renders a quantity back to its cell form, avoiding a trailing
// ".0" on whole numbers.
func FormatQty(qty float64) string {
	if IsWholeQty(qty) {
		return strconv.FormatInt(int64(qty), 10)
	}
	return strconv.FormatFloat(qty, 'g', -1, 64)
}
