package indexer

import (
	"reflect"
	"testing"
)

func TestSplitChunks(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"blank line separated", "A\n\nB\n\n\nC", []string{"A", "B", "C"}},
		{"whitespace only", "  \n\n  ", []string{}},
		{"single chunk", "just one paragraph", []string{"just one paragraph"}},
		{"trims pieces", "  first  \n\n  second  ", []string{"first", "second"}},
		{"single newline not a boundary", "line one\nline two\n\nnext", []string{"line one\nline two", "next"}},
		{"windows line endings", "A\r\n\r\nB", []string{"A", "B"}},
		{"empty input", "", []string{}},
		{"leading and trailing blanks", "\n\nA\n\n", []string{"A"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitChunks(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitChunks(%q)=%v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
