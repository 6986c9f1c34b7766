package telegram

import (
	"strings"

	"github.com/mzhaase/babelgif/pkg/translate"
)

// helpCommand shows usage instead of running the pipeline.
const helpCommand = "/help"

// ParseSelector splits an inline query into a language selector and the text
// to translate.
//
// A leading "/<code>" token selects that catalog language and "/random"
// selects a random one. An unknown command token is not stripped: it stays in
// the text and the selector defaults to random, so typos still produce an
// animation instead of silence.
func ParseSelector(query string, catalog *translate.Catalog) (selector, text string) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(trimmed, "/") {
		return translate.SelectorRandom, trimmed
	}

	cmd, rest, _ := strings.Cut(trimmed, " ")
	code := strings.ToLower(strings.TrimPrefix(cmd, "/"))
	switch {
	case code == translate.SelectorRandom:
		return translate.SelectorRandom, strings.TrimSpace(rest)
	case catalog.Has(code):
		return code, strings.TrimSpace(rest)
	default:
		return translate.SelectorRandom, trimmed
	}
}

// IsHelp reports whether the query asks for usage help: an explicit /help
// command or nothing but whitespace.
func IsHelp(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return true
	}
	cmd, _, _ := strings.Cut(trimmed, " ")
	return strings.EqualFold(cmd, helpCommand)
}
