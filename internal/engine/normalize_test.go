package engine

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "punctuation and case", in: "Hello, World!!", want: []string{"hello", "world"}},
		{name: "inner apostrophe", in: "don't", want: []string{"dont"}},
		{name: "every stripped character", in: `a.b,c!d?e'f"g`, want: []string{"abcdefg"}},
		{name: "mixed whitespace", in: "  need\thelp\nwith   Database  ", want: []string{"need", "help", "with", "database"}},
		{name: "punctuation-only token kept as empty", in: "wait ... what", want: []string{"wait", "", "what"}},
		{name: "other punctuation untouched", in: "c++ (go) #systems", want: []string{"c++", "(go)", "#systems"}},
		{name: "empty input", in: "", want: []string{}},
		{name: "whitespace only", in: " \t\n", want: []string{}},
		{name: "order and duplicates preserved", in: "b a b", want: []string{"b", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	in := "Anyone know DATABASES?"
	first := Normalize(in)
	second := Normalize(in)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize should be deterministic: %q vs %q", first, second)
	}
}
