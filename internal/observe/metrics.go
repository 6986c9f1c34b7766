// Package observe provides application-wide observability primitives for
// babelgif: OpenTelemetry metrics, tracing helpers, and HTTP middleware for
// the ops listener.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so metrics can be scraped
// from the standard /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all babelgif metrics.
const meterName = "github.com/mzhaase/babelgif"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranslateDuration tracks translation endpoint latency.
	TranslateDuration metric.Float64Histogram

	// RenderDuration tracks frame rasterisation plus GIF encoding latency.
	RenderDuration metric.Float64Histogram

	// UploadDuration tracks artifact upload latency.
	UploadDuration metric.Float64Histogram

	// PipelineDuration tracks full translate→render→upload run latency.
	PipelineDuration metric.Float64Histogram

	// --- Counters ---

	// PipelineRuns counts completed pipeline runs. Use with attribute:
	//   attribute.String("outcome", ...) — "success" or a failure reason.
	PipelineRuns metric.Int64Counter

	// SupersededDrops counts requests discarded because a newer request
	// from the same user arrived. Use with attribute:
	//   attribute.String("checkpoint", ...) — "debounce" or "delivery".
	SupersededDrops metric.Int64Counter

	// InlineQueries counts inbound inline queries. Use with attribute:
	//   attribute.String("kind", ...) — "pipeline", "help", or "denied".
	InlineQueries metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks ops-endpoint request time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote-call pipeline stages.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TranslateDuration, err = m.Float64Histogram("babelgif.translate.duration",
		metric.WithDescription("Latency of the translation endpoint call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RenderDuration, err = m.Float64Histogram("babelgif.render.duration",
		metric.WithDescription("Latency of frame rendering and GIF encoding."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.UploadDuration, err = m.Float64Histogram("babelgif.upload.duration",
		metric.WithDescription("Latency of the artifact upload."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("babelgif.pipeline.duration",
		metric.WithDescription("End-to-end pipeline run latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.PipelineRuns, err = m.Int64Counter("babelgif.pipeline.runs",
		metric.WithDescription("Total pipeline runs by outcome."),
	); err != nil {
		return nil, err
	}
	if met.SupersededDrops, err = m.Int64Counter("babelgif.superseded.drops",
		metric.WithDescription("Requests discarded as superseded, by checkpoint."),
	); err != nil {
		return nil, err
	}
	if met.InlineQueries, err = m.Int64Counter("babelgif.inline.queries",
		metric.WithDescription("Inbound inline queries by kind."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("babelgif.http.request.duration",
		metric.WithDescription("Ops HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordPipelineRun records one completed pipeline run with its outcome
// ("success" or a failure reason) and total duration in seconds.
func (m *Metrics) RecordPipelineRun(ctx context.Context, outcome string, seconds float64) {
	m.PipelineRuns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
	m.PipelineDuration.Record(ctx, seconds)
}

// RecordSupersededDrop records a request discarded at the given checkpoint
// ("debounce" or "delivery").
func (m *Metrics) RecordSupersededDrop(ctx context.Context, checkpoint string) {
	m.SupersededDrops.Add(ctx, 1,
		metric.WithAttributes(attribute.String("checkpoint", checkpoint)))
}

// RecordInlineQuery records one inbound inline query of the given kind.
func (m *Metrics) RecordInlineQuery(ctx context.Context, kind string) {
	m.InlineQueries.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)))
}
