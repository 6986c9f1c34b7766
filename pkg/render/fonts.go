package render

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// defaultLatinFonts lists font files tried, in order, for Latin-script
// languages. Paths cover common Linux and macOS installations; unavailable
// candidates are skipped silently.
var defaultLatinFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}

// defaultNonLatinFonts lists font files tried first for languages whose
// display text needs glyph coverage that generic Latin fonts usually lack
// (Cyrillic, CJK, Arabic, Devanagari, Greek, Hebrew). The Latin candidates
// are tried afterwards; DejaVu in particular covers Cyrillic and Greek.
var defaultNonLatinFonts = []string{
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansCJKjp-Regular.otf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
}

// nonLatinLanguages marks catalog language codes rendered with the non-Latin
// candidate set.
var nonLatinLanguages = map[string]bool{
	"ru": true,
	"ja": true,
	"ko": true,
	"zh": true,
	"ar": true,
	"hi": true,
	"el": true,
	"he": true,
}

// fontFor returns a parsed font suitable for the given language code, or nil
// when no candidate file could be loaded. A nil return is not an error: the
// caller falls back to the builtin bitmap face so that rendering never fails
// for lack of fonts.
func (r *Renderer) fontFor(langCode string) *sfnt.Font {
	candidates := r.latinFonts
	if nonLatinLanguages[langCode] {
		candidates = append(append([]string{}, r.nonLatinFonts...), r.latinFonts...)
	}

	for _, path := range candidates {
		if f := r.loadFont(path); f != nil {
			return f
		}
	}
	return nil
}

// loadFont parses the font file at path, caching both successes and failures
// so each candidate is read from disk at most once per process.
func (r *Renderer) loadFont(path string) *sfnt.Font {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if f, ok := r.fontCache[path]; ok {
		return f // may be nil for known-bad paths
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.fontCache[path] = nil
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		r.fontCache[path] = nil
		return nil
	}
	r.fontCache[path] = f
	return f
}

// newFaces derives the text and caption faces for one frame. Faces hold
// per-use rasterisation buffers and are not safe for concurrent drawing, so
// each frame goroutine gets its own pair. When src is nil both faces are the
// builtin fixed-size bitmap face.
func (r *Renderer) newFaces(src *sfnt.Font) (text, caption font.Face, err error) {
	if src == nil {
		return basicfont.Face7x13, basicfont.Face7x13, nil
	}
	text, err = opentype.NewFace(src, &opentype.FaceOptions{
		Size:    r.spec.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, nil, err
	}
	caption, err = opentype.NewFace(src, &opentype.FaceOptions{
		Size:    r.spec.CaptionFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, nil, err
	}
	return text, caption, nil
}
