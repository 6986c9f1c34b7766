// Package coalesce turns a stream of per-user keystrokes into at most one
// pipeline run per settled input.
//
// Every submission is stamped with a process-wide monotonic token and
// recorded as the user's latest request. A debounce timer then has to expire
// with the token still the latest before any work starts, and the token is
// checked again after the run completes, before delivery. A request that
// loses either check is discarded silently. Work already in flight is never
// cancelled when superseded; only its result is dropped.
package coalesce

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mzhaase/babelgif/internal/observe"
	"github.com/mzhaase/babelgif/internal/pipeline"
)

const (
	// DefaultDebounce is how long a user's input must stay unchanged before
	// the pipeline starts.
	DefaultDebounce = 2 * time.Second

	// DefaultDeadline bounds one full pipeline run.
	DefaultDeadline = 25 * time.Second
)

// RunFunc executes the pipeline for one request. It must honour ctx's
// deadline and must not panic.
type RunFunc func(ctx context.Context, req pipeline.Request) pipeline.Outcome

// DeliverFunc hands a finished outcome back to the transport. It is called at
// most once per submission, and never for a superseded request.
type DeliverFunc func(req pipeline.Request, out pipeline.Outcome)

// Option configures a [Coalescer].
type Option func(*Coalescer)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Coalescer) { c.debounce = d }
}

// WithDeadline overrides the per-run deadline.
func WithDeadline(d time.Duration) Option {
	return func(c *Coalescer) { c.deadline = d }
}

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Coalescer) { c.metrics = m }
}

// Coalescer debounces per-user requests and discards superseded results. It
// is safe for concurrent use from any number of transport goroutines.
type Coalescer struct {
	run      RunFunc
	debounce time.Duration
	deadline time.Duration
	metrics  *observe.Metrics

	counter atomic.Uint64

	mu     sync.Mutex
	latest map[int64]uint64

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Coalescer that executes settled requests via run.
func New(run RunFunc, opts ...Option) *Coalescer {
	c := &Coalescer{
		run:      run,
		debounce: DefaultDebounce,
		deadline: DefaultDeadline,
		metrics:  observe.DefaultMetrics(),
		latest:   make(map[int64]uint64),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit registers a new request for userID, superseding any pending or
// in-flight request from the same user. deliver is invoked from a background
// goroutine only if the request is still the user's latest when its result is
// ready. Submissions after Close are dropped.
func (c *Coalescer) Submit(userID int64, text, selector string, deliver DeliverFunc) {
	select {
	case <-c.done:
		return
	default:
	}

	req := pipeline.Request{
		UserID:           userID,
		Text:             text,
		LanguageSelector: selector,
		Token:            c.counter.Add(1),
	}

	c.mu.Lock()
	c.latest[userID] = req.Token
	c.mu.Unlock()

	c.wg.Add(1)
	go c.waitAndRun(req, deliver)
}

// current returns the latest token recorded for userID.
func (c *Coalescer) current(userID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest[userID]
}

func (c *Coalescer) waitAndRun(req pipeline.Request, deliver DeliverFunc) {
	defer c.wg.Done()

	timer := time.NewTimer(c.debounce)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-c.done:
		return
	}

	// Checkpoint 1: a newer submission during the debounce window wins
	// without any work being done.
	if c.current(req.UserID) != req.Token {
		c.metrics.RecordSupersededDrop(context.Background(), "debounce")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.deadline)
	defer cancel()
	out := c.run(ctx, req)

	// Checkpoint 2: the run may have been overtaken while in flight. The
	// result is complete but must not reach the user.
	if c.current(req.UserID) != req.Token {
		c.metrics.RecordSupersededDrop(context.Background(), "delivery")
		return
	}

	deliver(req, out)
}

// Close stops accepting submissions, releases pending debounce waits, and
// blocks until in-flight runs finish. Safe to call more than once.
func (c *Coalescer) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}
