package render

import "strings"

// wrapText greedily wraps s into lines of at most width runes. Runs of
// whitespace (including newlines) collapse to single spaces before wrapping.
// Words longer than width are hard-broken at the column limit so that no line
// ever exceeds it. Returns nil when s contains no words.
func wrapText(s string, width int) []string {
	if width < 1 {
		width = 1
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}

	for _, w := range words {
		runes := []rune(w)

		// Hard-break words that cannot fit on any line.
		for len(runes) > width {
			flush()
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		if len(runes) == 0 {
			continue
		}

		switch {
		case len(cur) == 0:
			cur = append(cur, runes...)
		case len(cur)+1+len(runes) <= width:
			cur = append(cur, ' ')
			cur = append(cur, runes...)
		default:
			flush()
			cur = append(cur, runes...)
		}
	}
	flush()

	return lines
}
