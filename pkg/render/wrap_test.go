package render

import (
	"reflect"
	"testing"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"fits on one line", "hello world", 25, []string{"hello world"}},
		{"wraps at word boundary", "the quick brown fox jumps", 10, []string{"the quick", "brown fox", "jumps"}},
		{"collapses whitespace", "a \t b\n\nc", 25, []string{"a b c"}},
		{"empty input", "", 25, nil},
		{"whitespace only", " \t \n ", 25, nil},
		{"hard-breaks long words", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long word mid-sentence", "hi abcdefgh bye", 4, []string{"hi", "abcd", "efgh", "bye"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.in, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("wrapText(%q, %d) = %#v, want %#v", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapText_RespectsRuneWidth(t *testing.T) {
	// Multi-byte runes count as one column each.
	got := wrapText("ありがとう ございます", 5)
	want := []string{"ありがとう", "ございます"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wrapText = %#v, want %#v", got, want)
	}
}
