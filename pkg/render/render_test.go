package render

import (
	"bytes"
	"context"
	"errors"
	"image/gif"
	"testing"
	"time"
)

// testSpec returns a small spec so tests stay fast.
func testSpec() Spec {
	spec := DefaultSpec()
	spec.Width = 200
	spec.Height = 120
	spec.FrameCount = 4
	return spec
}

// testRenderer uses empty font candidate lists so rendering always falls back
// to the builtin bitmap face, independent of the host's installed fonts.
func testRenderer(spec Spec) *Renderer {
	return New(spec, WithLatinFonts(nil), WithNonLatinFonts(nil))
}

func TestRender_ProducesLoopingGIF(t *testing.T) {
	spec := testSpec()
	r := testRenderer(spec)

	data, err := r.Render(context.Background(), "hola mundo", "Spanish", "es")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode rendered gif: %v", err)
	}
	if got := len(anim.Image); got != spec.FrameCount {
		t.Fatalf("frame count = %d, want %d", got, spec.FrameCount)
	}
	if anim.LoopCount != 0 {
		t.Fatalf("loop count = %d, want 0 (loop forever)", anim.LoopCount)
	}
	wantDelay := int(spec.FrameDuration / (10 * time.Millisecond))
	for i, d := range anim.Delay {
		if d != wantDelay {
			t.Fatalf("frame %d delay = %d, want %d", i, d, wantDelay)
		}
	}
	bounds := anim.Image[0].Bounds()
	if bounds.Dx() != spec.Width || bounds.Dy() != spec.Height {
		t.Fatalf("frame size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), spec.Width, spec.Height)
	}
}

func TestRender_FramesDifferInColor(t *testing.T) {
	r := testRenderer(testSpec())

	data, err := r.Render(context.Background(), "color sweep", "French", "fr")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode rendered gif: %v", err)
	}

	// The hue sweep gives every frame a distinct text palette entry.
	p0 := anim.Image[0].Palette
	p1 := anim.Image[1].Palette
	same := true
	for i := range p0 {
		r0, g0, b0, _ := p0[i].RGBA()
		r1, g1, b1, _ := p1[i].RGBA()
		if r0 != r1 || g0 != g1 || b0 != b1 {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected palettes of consecutive frames to differ")
	}
}

func TestRender_EmptyTextFails(t *testing.T) {
	r := testRenderer(testSpec())

	_, err := r.Render(context.Background(), "   \t  ", "German", "de")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
}

func TestRender_NonLatinFallsBackToBuiltinFace(t *testing.T) {
	r := testRenderer(testSpec())

	// No font candidates are configured, so even Cyrillic text must render
	// via the builtin face without error.
	data, err := r.Render(context.Background(), "привет мир", "Russian", "ru")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty gif data")
	}
}

func TestRender_CancelledContext(t *testing.T) {
	r := testRenderer(testSpec())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, "too late", "Italian", "it"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
