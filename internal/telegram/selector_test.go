package telegram

import (
	"testing"

	"github.com/mzhaase/babelgif/pkg/translate"
)

func TestParseSelector(t *testing.T) {
	cat := translate.DefaultCatalog()

	tests := []struct {
		query        string
		wantSelector string
		wantText     string
	}{
		{"hello world", translate.SelectorRandom, "hello world"},
		{"  hello world  ", translate.SelectorRandom, "hello world"},
		{"/de hello world", "de", "hello world"},
		{"/DE hello world", "de", "hello world"},
		{"/random hello", translate.SelectorRandom, "hello"},
		{"/de", "de", ""},
		// Unknown commands are kept as text, not swallowed.
		{"/klingon hello", translate.SelectorRandom, "/klingon hello"},
		{"/ hello", translate.SelectorRandom, "/ hello"},
	}
	for _, tt := range tests {
		selector, text := ParseSelector(tt.query, cat)
		if selector != tt.wantSelector || text != tt.wantText {
			t.Errorf("ParseSelector(%q) = (%q, %q), want (%q, %q)",
				tt.query, selector, text, tt.wantSelector, tt.wantText)
		}
	}
}

func TestIsHelp(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"/help", true},
		{"/HELP", true},
		{"/help me", true},
		{"help", false},
		{"/helpful", false},
		{"hello", false},
	}
	for _, tt := range tests {
		if got := IsHelp(tt.query); got != tt.want {
			t.Errorf("IsHelp(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
