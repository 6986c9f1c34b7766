// Package allowlist restricts bot access to a fixed set of user IDs loaded
// from a plain text file, one numeric Telegram user ID per line.
package allowlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Allowlist is an immutable set of permitted user IDs. The zero value is an
// empty list that denies everyone.
type Allowlist struct {
	ids map[int64]struct{}
}

// Load reads an allowlist file from path. Blank lines and lines starting with
// '#' are ignored; any other non-numeric line is an error.
func Load(path string) (*Allowlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open allowlist: %w", err)
	}
	defer f.Close()

	al, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse allowlist %q: %w", path, err)
	}
	return al, nil
}

// Parse reads allowlist entries from r. See [Load] for the format.
func Parse(r io.Reader) (*Allowlist, error) {
	ids := make(map[int64]struct{})
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: not a user ID: %q", lineNo, line)
		}
		ids[id] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &Allowlist{ids: ids}, nil
}

// Allowed reports whether id may use the bot.
func (a *Allowlist) Allowed(id int64) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[id]
	return ok
}

// Len returns the number of permitted IDs.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}
