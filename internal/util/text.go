package util

import (
	"regexp"
	"strings"
)

var (
	reWhitespace    = regexp.MustCompile(`\s+`)
	reDesignatorSep = regexp.MustCompile(`[,;:]`)
	reDesignator    = regexp.MustCompile(`^[A-Z].*[0-9]$`)
)

// NormalizeLabel converts any cell text to the canonical comparison key:
// non-printable ASCII stripped, all whitespace removed, lowercased. Every
// label and taxonomy comparison in the pipeline goes through this, which is
// what makes header detection immune to embedded line breaks and stray
// control characters in Excel cells.
func NormalizeLabel(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	s := reWhitespace.ReplaceAllString(b.String(), "")
	return strings.ToLower(s)
}

// NormalizeSpaces collapses runs of whitespace to one space and trims.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(input, " "))
}

// SplitDesignators splits a designator cell on the separators seen in the
// wild (comma, semicolon, colon) and trims each entry. Empty entries are
// dropped.
func SplitDesignators(input string) []string {
	parts := reDesignatorSep.Split(input, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinDesignators is the inverse of SplitDesignators: the canonical
// comma-joined form stored on a record.
func JoinDesignators(designators []string) string {
	return strings.Join(designators, ",")
}

// IsValidDesignator reports whether an uppercased reference designator looks
// legitimate: letter prefix, digit suffix. The bare board itself is listed as
// "PCB" in this template family and is allowed through.
func IsValidDesignator(designator string) bool {
	if designator == "PCB" {
		return true
	}
	return reDesignator.MatchString(designator)
}
