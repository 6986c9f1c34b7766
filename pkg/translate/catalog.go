package translate

import (
	"math/rand"
	"sort"
)

// SelectorRandom is the language selector meaning "pick uniformly at random
// from the catalog at translate time".
const SelectorRandom = "random"

// Language pairs an ISO 639-1 code with its English display name.
type Language struct {
	Code string
	Name string
}

// Catalog is the static language-code → display-name mapping, fixed at
// startup. All methods are safe for concurrent use after construction.
type Catalog struct {
	byCode map[string]string
	codes  []string // sorted, for deterministic listings
}

// DefaultCatalog returns the stock set of translation target languages.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Language{
		{"es", "Spanish"},
		{"fr", "French"},
		{"de", "German"},
		{"it", "Italian"},
		{"pt", "Portuguese"},
		{"ru", "Russian"},
		{"ja", "Japanese"},
		{"ko", "Korean"},
		{"zh", "Chinese"},
		{"ar", "Arabic"},
		{"hi", "Hindi"},
		{"tr", "Turkish"},
		{"pl", "Polish"},
		{"nl", "Dutch"},
		{"sv", "Swedish"},
		{"da", "Danish"},
		{"no", "Norwegian"},
		{"fi", "Finnish"},
		{"el", "Greek"},
		{"he", "Hebrew"},
	})
}

// NewCatalog builds a Catalog from the given languages. Later duplicates of a
// code overwrite earlier ones.
func NewCatalog(langs []Language) *Catalog {
	c := &Catalog{byCode: make(map[string]string, len(langs))}
	for _, l := range langs {
		if _, ok := c.byCode[l.Code]; !ok {
			c.codes = append(c.codes, l.Code)
		}
		c.byCode[l.Code] = l.Name
	}
	sort.Strings(c.codes)
	return c
}

// Name returns the display name for code and whether the code is known.
func (c *Catalog) Name(code string) (string, bool) {
	name, ok := c.byCode[code]
	return name, ok
}

// Has reports whether code names a catalog entry.
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Pick returns a uniformly random catalog entry.
func (c *Catalog) Pick() Language {
	code := c.codes[rand.Intn(len(c.codes))]
	return Language{Code: code, Name: c.byCode[code]}
}

// Codes returns the catalog's language codes in sorted order.
func (c *Catalog) Codes() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.codes)
}
