// Package pipeline sequences the translate, render, and upload stages under
// a single deadline, mapping every stage failure to a typed outcome.
//
// Stage order is fixed and each stage is attempted at most once: a failed
// remote call produces a typed failure rather than a retry loop. The user
// re-triggers by typing again, which the coalescer already debounces.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mzhaase/babelgif/internal/observe"
	"github.com/mzhaase/babelgif/pkg/translate"
	"github.com/mzhaase/babelgif/pkg/upload"
)

// Request is one unit of pipeline work, immutable once constructed.
type Request struct {
	// UserID identifies the requesting user.
	UserID int64

	// Text is the raw string to translate and render.
	Text string

	// LanguageSelector is a catalog code, [translate.SelectorRandom], or
	// empty (meaning random).
	LanguageSelector string

	// Token is the supersession marker snapshotted at submission time.
	Token uint64
}

// Translator is the translation stage. It never fails: remote errors degrade
// to the original text, reported via [translate.Result.Degraded].
type Translator interface {
	Translate(ctx context.Context, text, selector string) translate.Result
}

// Renderer is the frame-rendering and encoding stage.
type Renderer interface {
	Render(ctx context.Context, text, languageName, languageCode string) ([]byte, error)
}

// Uploader is the artifact upload stage.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator runs the full pipeline. It is stateless apart from its stage
// dependencies and safe for concurrent use.
type Orchestrator struct {
	translator Translator
	renderer   Renderer
	uploader   Uploader
	metrics    *observe.Metrics
}

// New creates an Orchestrator over the given stages.
func New(t Translator, r Renderer, u Uploader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		translator: t,
		renderer:   r,
		uploader:   u,
		metrics:    observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the three stages for req under ctx's deadline and
// returns a typed Outcome. Run never panics and never returns before all
// attempted stages have settled; deadline expiry at any point maps to
// [ReasonTimedOut].
func (o *Orchestrator) Run(ctx context.Context, req Request) (out Outcome) {
	start := time.Now()
	log := observe.Logger(ctx).With("user_id", req.UserID, "token", req.Token)

	ctx, span := observe.StartSpan(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int64("user_id", req.UserID)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic recovered", "panic", fmt.Sprint(r))
			out = failure(ReasonInternal)
		}
		outcome := "success"
		if !out.OK {
			outcome = string(out.Reason)
		}
		o.metrics.RecordPipelineRun(ctx, outcome, time.Since(start).Seconds())
	}()

	// Stage 1: translation. Never fatal, degrades to the original text.
	tStart := time.Now()
	tr := o.translator.Translate(ctx, req.Text, req.LanguageSelector)
	o.metrics.TranslateDuration.Record(ctx, time.Since(tStart).Seconds())
	if tr.Degraded {
		log.Info("translation degraded", "stage", "translate")
	}
	if ctx.Err() != nil {
		return failure(ReasonTimedOut)
	}

	// Stage 2: render + encode.
	rStart := time.Now()
	artifact, err := o.renderer.Render(ctx, tr.Text, tr.LanguageName, tr.LanguageCode)
	o.metrics.RenderDuration.Record(ctx, time.Since(rStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return failure(ReasonTimedOut)
		}
		log.Warn("render failed", "stage", "render", "err", err)
		return failure(ReasonRenderFailed)
	}

	// Stage 3: upload.
	uStart := time.Now()
	artifactURL, err := o.uploader.Upload(ctx, artifact, artifactFilename())
	o.metrics.UploadDuration.Record(ctx, time.Since(uStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return failure(ReasonTimedOut)
		}
		log.Warn("upload failed", "stage", "upload", "err", err)
		if errors.Is(err, upload.ErrInvalidURL) {
			return failure(ReasonUploadInvalidURL)
		}
		return failure(ReasonUploadFailed)
	}

	return Outcome{
		OK:           true,
		DisplayText:  tr.Text,
		LanguageName: tr.LanguageName,
		ArtifactURL:  artifactURL,
		Degraded:     tr.Degraded,
	}
}

// artifactFilename generates a unique name for the uploaded animation.
func artifactFilename() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return "translation_" + hex.EncodeToString(b[:]) + ".gif"
}
