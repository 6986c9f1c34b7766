package coalesce

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mzhaase/babelgif/internal/observe"
	"github.com/mzhaase/babelgif/internal/pipeline"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// delivery records one outcome handed to the transport.
type delivery struct {
	req pipeline.Request
	out pipeline.Outcome
}

// recorder collects deliveries across goroutines.
type recorder struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (r *recorder) deliver(req pipeline.Request, out pipeline.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, delivery{req: req, out: out})
}

func (r *recorder) all() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]delivery(nil), r.deliveries...)
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m
}

func echoRun(_ context.Context, req pipeline.Request) pipeline.Outcome {
	return pipeline.Outcome{OK: true, DisplayText: req.Text}
}

func TestRapidSequenceDeliversOnlyLast(t *testing.T) {
	rec := &recorder{}
	c := New(echoRun,
		WithDebounce(30*time.Millisecond),
		WithDeadline(time.Second),
		WithMetrics(testMetrics(t)),
	)

	// Three keystrokes well inside one debounce window.
	c.Submit(1, "h", "", rec.deliver)
	c.Submit(1, "he", "", rec.deliver)
	c.Submit(1, "hello", "", rec.deliver)
	time.Sleep(100 * time.Millisecond)
	c.Close()

	got := rec.all()
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}
	if got[0].req.Text != "hello" {
		t.Errorf("delivered text = %q, want %q", got[0].req.Text, "hello")
	}
	if !got[0].out.OK {
		t.Errorf("delivered outcome not OK")
	}
}

func TestSpacedQueriesBothDeliver(t *testing.T) {
	rec := &recorder{}
	c := New(echoRun,
		WithDebounce(20*time.Millisecond),
		WithDeadline(time.Second),
		WithMetrics(testMetrics(t)),
	)

	c.Submit(1, "first", "", rec.deliver)
	time.Sleep(80 * time.Millisecond)
	c.Submit(1, "second", "", rec.deliver)
	time.Sleep(80 * time.Millisecond)
	c.Close()

	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(got))
	}
	if got[0].req.Text != "first" || got[1].req.Text != "second" {
		t.Errorf("delivered texts = %q, %q", got[0].req.Text, got[1].req.Text)
	}
}

func TestUsersDoNotInterfere(t *testing.T) {
	rec := &recorder{}
	c := New(echoRun,
		WithDebounce(20*time.Millisecond),
		WithDeadline(time.Second),
		WithMetrics(testMetrics(t)),
	)

	c.Submit(1, "from alice", "", rec.deliver)
	c.Submit(2, "from bob", "", rec.deliver)
	time.Sleep(80 * time.Millisecond)
	c.Close()

	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(got))
	}
	seen := map[int64]string{}
	for _, d := range got {
		seen[d.req.UserID] = d.req.Text
	}
	if seen[1] != "from alice" || seen[2] != "from bob" {
		t.Errorf("per-user texts = %v", seen)
	}
}

func TestSlowStaleRunLosesToFasterNewerRun(t *testing.T) {
	// The first request's run takes long enough that a second request gets
	// submitted, debounces, and completes while the first is still in
	// flight. Only the second may be delivered: the first must be dropped
	// at the delivery checkpoint even though its work finished.
	rec := &recorder{}
	run := func(ctx context.Context, req pipeline.Request) pipeline.Outcome {
		if req.Text == "slow" {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
			}
		}
		return pipeline.Outcome{OK: true, DisplayText: req.Text}
	}
	c := New(run,
		WithDebounce(10*time.Millisecond),
		WithDeadline(time.Second),
		WithMetrics(testMetrics(t)),
	)

	c.Submit(1, "slow", "", rec.deliver)
	// Let the first request pass its debounce checkpoint and start running.
	time.Sleep(50 * time.Millisecond)
	c.Submit(1, "fast", "", rec.deliver)
	time.Sleep(300 * time.Millisecond)
	c.Close()

	got := rec.all()
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1: %+v", len(got), got)
	}
	if got[0].req.Text != "fast" {
		t.Errorf("delivered text = %q, want %q", got[0].req.Text, "fast")
	}
}

func TestTokensAreMonotonic(t *testing.T) {
	rec := &recorder{}
	c := New(echoRun,
		WithDebounce(10*time.Millisecond),
		WithDeadline(time.Second),
		WithMetrics(testMetrics(t)),
	)

	c.Submit(1, "a", "", rec.deliver)
	time.Sleep(50 * time.Millisecond)
	c.Submit(2, "b", "", rec.deliver)
	time.Sleep(50 * time.Millisecond)
	c.Close()

	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(got))
	}
	if got[0].req.Token == 0 || got[1].req.Token <= got[0].req.Token {
		t.Errorf("tokens = %d, %d; want strictly increasing and nonzero",
			got[0].req.Token, got[1].req.Token)
	}
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	rec := &recorder{}
	c := New(echoRun,
		WithDebounce(time.Millisecond),
		WithDeadline(time.Second),
		WithMetrics(testMetrics(t)),
	)
	c.Close()

	c.Submit(1, "late", "", rec.deliver)
	time.Sleep(30 * time.Millisecond)

	if got := rec.all(); len(got) != 0 {
		t.Fatalf("deliveries after Close = %d, want 0", len(got))
	}
}

func TestRunContextCarriesDeadline(t *testing.T) {
	deadlineSeen := make(chan bool, 1)
	run := func(ctx context.Context, req pipeline.Request) pipeline.Outcome {
		_, ok := ctx.Deadline()
		deadlineSeen <- ok
		return pipeline.Outcome{OK: true}
	}
	c := New(run,
		WithDebounce(time.Millisecond),
		WithDeadline(5*time.Second),
		WithMetrics(testMetrics(t)),
	)
	defer c.Close()

	c.Submit(1, "x", "", func(pipeline.Request, pipeline.Outcome) {})

	select {
	case ok := <-deadlineSeen:
		if !ok {
			t.Error("run context has no deadline")
		}
	case <-time.After(time.Second):
		t.Fatal("run was never invoked")
	}
}
