package util

import "testing"

func TestParseQty(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "integer", input: "4", want: 4, ok: true},
		{name: "whitespace", input: " 12 ", want: 12, ok: true},
		{name: "decimal dot", input: "0.5", want: 0.5, ok: true},
		{name: "decimal comma", input: "0,25", want: 0.25, ok: true},
		{name: "nbsp", input: "\u00a03\u00a0", want: 3, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "TBD", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseQty(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestFormatQty(t *testing.T) {
	if got := FormatQty(3); got != "3" {
		t.Fatalf("got %q", got)
	}
	if got := FormatQty(0.5); got != "0.5" {
		t.Fatalf("got %q", got)
	}
}

func TestIsWholeQty(t *testing.T) {
	if !IsWholeQty(7) {
		t.Fatal("7 is whole")
	}
	if IsWholeQty(0.25) {
		t.Fatal("0.25 is not whole")
	}
}
