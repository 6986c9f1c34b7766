// Package telegram is the inline-query transport for babelgif. It receives
// inline queries over long polling, gates them through the allowlist, hands
// text to the coalescer, and answers each surviving query with exactly one
// result.
package telegram

import (
	"context"

	"github.com/mzhaase/babelgif/internal/allowlist"
	"github.com/mzhaase/babelgif/internal/coalesce"
	"github.com/mzhaase/babelgif/internal/observe"
	"github.com/mzhaase/babelgif/internal/pipeline"
	"github.com/mzhaase/babelgif/pkg/translate"
)

// Answerer sends one set of inline results back to the chat platform.
type Answerer interface {
	Answer(queryID string, results []interface{}, cacheTime int) error
}

// Submitter schedules debounced pipeline work. Satisfied by
// [coalesce.Coalescer].
type Submitter interface {
	Submit(userID int64, text, selector string, deliver coalesce.DeliverFunc)
}

// HandlerOption configures a [Handler].
type HandlerOption func(*Handler)

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// Handler routes one inline query to the right response path. It holds no
// per-query state and is safe for concurrent use.
type Handler struct {
	allow     *allowlist.Allowlist
	catalog   *translate.Catalog
	submitter Submitter
	answerer  Answerer
	metrics   *observe.Metrics
}

// NewHandler builds a Handler over the given collaborators.
func NewHandler(allow *allowlist.Allowlist, catalog *translate.Catalog, s Submitter, a Answerer, opts ...HandlerOption) *Handler {
	h := &Handler{
		allow:     allow,
		catalog:   catalog,
		submitter: s,
		answerer:  a,
		metrics:   observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleInlineQuery processes one inline query. Denied and help queries are
// answered immediately; everything else is scheduled on the coalescer and
// answered later from the delivery callback, unless superseded first.
func (h *Handler) HandleInlineQuery(ctx context.Context, queryID string, userID int64, query string) {
	log := observe.Logger(ctx).With("user_id", userID, "query_id", queryID)

	if !h.allow.Allowed(userID) {
		h.metrics.RecordInlineQuery(ctx, "denied")
		log.Info("inline query denied")
		h.send(ctx, queryID, deniedResult(), cacheTimeStatic)
		return
	}

	if IsHelp(query) {
		h.metrics.RecordInlineQuery(ctx, "help")
		h.send(ctx, queryID, helpResult(h.catalog), cacheTimeStatic)
		return
	}

	h.metrics.RecordInlineQuery(ctx, "pipeline")
	selector, text := ParseSelector(query, h.catalog)
	h.submitter.Submit(userID, text, selector, func(req pipeline.Request, out pipeline.Outcome) {
		if out.OK {
			h.send(ctx, queryID, gifResult(req, out), cacheTimeResult)
			return
		}
		h.send(ctx, queryID, failureResult(out.Reason), cacheTimeResult)
	})
}

func (h *Handler) send(ctx context.Context, queryID string, result interface{}, cacheTime int) {
	if err := h.answerer.Answer(queryID, []interface{}{result}, cacheTime); err != nil {
		observe.Logger(ctx).Warn("answering inline query failed",
			"query_id", queryID, "err", err)
	}
}
