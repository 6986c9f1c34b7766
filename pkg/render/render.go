// Package render turns translated text into a looping animated GIF.
//
// Each frame draws the word-wrapped text centered on the canvas with a
// one-pixel shadow underlay, cycling the text color through an HSV hue sweep
// across the frame sequence, plus a smaller muted caption naming the target
// language below the text block. Frames are rasterised in parallel (bounded
// by [WithMaxParallel]) and assembled into a single infinitely-looping GIF.
//
// Font lookup is best-effort: an ordered candidate list per script family is
// tried and, when every candidate is unavailable, rendering degrades to the
// builtin bitmap face rather than failing.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"runtime"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

// ErrNoText is returned by [Renderer.Render] when the input contains no
// renderable words.
var ErrNoText = errors.New("render: no renderable text")

// blockLift shifts the text block slightly above true vertical center to
// leave room for the caption underneath.
const blockLift = 20

// captionGap is the vertical space between the text block and the caption.
const captionGap = 20

// Spec is the immutable rendering configuration bundle.
type Spec struct {
	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int

	// FrameCount is the number of animation frames; the hue sweep covers
	// 360° across them.
	FrameCount int

	// FrameDuration is the display time of each frame.
	FrameDuration time.Duration

	// FontSize and CaptionFontSize are point sizes at 72 DPI.
	FontSize        float64
	CaptionFontSize float64

	// WrapWidth is the column limit (in runes) for word wrapping.
	WrapWidth int

	// Saturation and Value are the fixed S and V percentages of the HSV
	// color sweep.
	Saturation float64
	Value      float64
}

// DefaultSpec returns the stock rendering configuration.
func DefaultSpec() Spec {
	return Spec{
		Width:           500,
		Height:          300,
		FrameCount:      20,
		FrameDuration:   100 * time.Millisecond,
		FontSize:        24,
		CaptionFontSize: 16,
		WrapWidth:       25,
		Saturation:      100,
		Value:           80,
	}
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithLatinFonts replaces the ordered font candidate list for Latin-script
// languages.
func WithLatinFonts(paths []string) Option {
	return func(r *Renderer) { r.latinFonts = paths }
}

// WithNonLatinFonts replaces the ordered font candidate list tried first for
// non-Latin-script languages.
func WithNonLatinFonts(paths []string) Option {
	return func(r *Renderer) { r.nonLatinFonts = paths }
}

// WithMaxParallel caps the number of frames rasterised concurrently.
// Defaults to GOMAXPROCS.
func WithMaxParallel(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxParallel = n
		}
	}
}

// Renderer produces animated GIF artifacts from text. It is safe for
// concurrent use; parsed fonts are cached across renders.
type Renderer struct {
	spec          Spec
	latinFonts    []string
	nonLatinFonts []string
	maxParallel   int

	fontMu    sync.Mutex
	fontCache map[string]*sfnt.Font
}

// New creates a Renderer with the given spec. Options are applied after
// defaults are set.
func New(spec Spec, opts ...Option) *Renderer {
	r := &Renderer{
		spec:          spec,
		latinFonts:    defaultLatinFonts,
		nonLatinFonts: defaultNonLatinFonts,
		maxParallel:   runtime.GOMAXPROCS(0),
		fontCache:     make(map[string]*sfnt.Font),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render rasterises text into an encoded looping GIF. languageName appears in
// the caption; languageCode selects the font candidate set. Returns
// [ErrNoText] when text wraps to zero lines; any other error means the frame
// rasteriser or the GIF encoder rejected the input.
func (r *Renderer) Render(ctx context.Context, text, languageName, languageCode string) ([]byte, error) {
	lines := wrapText(text, r.spec.WrapWidth)
	if len(lines) == 0 {
		return nil, ErrNoText
	}

	src := r.fontFor(languageCode)
	frames := make([]*image.Paletted, r.spec.FrameCount)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)
	for i := range frames {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			textFace, captionFace, err := r.newFaces(src)
			if err != nil {
				return fmt.Errorf("render: create font faces: %w", err)
			}
			frames[i] = r.drawFrame(lines, languageName, i, textFace, captionFace)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return encodeGIF(frames, r.spec.FrameDuration)
}

// drawFrame rasterises one animation frame: white background, shadowed
// centered text block in the frame's sweep color, and the language caption.
func (r *Renderer) drawFrame(lines []string, languageName string, frame int, textFace, captionFace font.Face) *image.Paletted {
	hue := float64((frame * 360 / r.spec.FrameCount) % 360)
	cr, cg, cb := HSVToRGB(hue, r.spec.Saturation, r.spec.Value)

	var (
		white      = color.RGBA{255, 255, 255, 255}
		textColor  = color.RGBA{cr, cg, cb, 255}
		shadow     = color.RGBA{40, 40, 40, 255}
		captionCol = color.RGBA{120, 120, 120, 255}
		black      = color.RGBA{0, 0, 0, 255}
	)
	pal := color.Palette{white, textColor, shadow, captionCol, black}

	img := image.NewPaletted(image.Rect(0, 0, r.spec.Width, r.spec.Height), pal)
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	metrics := textFace.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := metrics.Height.Ceil()
	blockHeight := lineHeight * len(lines)

	top := (r.spec.Height-blockHeight)/2 - blockLift
	baseline := top + ascent

	for _, line := range lines {
		w := font.MeasureString(textFace, line).Ceil()
		x := (r.spec.Width - w) / 2

		// Shadow underlay first, then the colored text on top.
		drawString(img, textFace, shadow, x+1, baseline+1, line)
		drawString(img, textFace, textColor, x, baseline, line)

		baseline += lineHeight
	}

	caption := "Language: " + languageName
	cw := font.MeasureString(captionFace, caption).Ceil()
	cx := (r.spec.Width - cw) / 2
	cy := top + blockHeight + captionGap + captionFace.Metrics().Ascent.Ceil()
	drawString(img, captionFace, captionCol, cx, cy, caption)

	return img
}

// drawString draws s onto dst with its baseline origin at (x, y).
func drawString(dst draw.Image, face font.Face, col color.Color, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// encodeGIF assembles frames into a single infinitely-looping GIF with the
// given per-frame display duration.
func encodeGIF(frames []*image.Paletted, frameDuration time.Duration) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("render: no frames to encode")
	}

	// GIF delays are in hundredths of a second.
	delay := int(frameDuration / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}

	anim := &gif.GIF{
		Image:     frames,
		Delay:     make([]int, len(frames)),
		LoopCount: 0, // loop forever
	}
	for i := range anim.Delay {
		anim.Delay[i] = delay
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("render: encode gif: %w", err)
	}
	return buf.Bytes(), nil
}
