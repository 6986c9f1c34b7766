package telegram

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mzhaase/babelgif/internal/allowlist"
	"github.com/mzhaase/babelgif/internal/coalesce"
	"github.com/mzhaase/babelgif/internal/observe"
	"github.com/mzhaase/babelgif/internal/pipeline"
	"github.com/mzhaase/babelgif/pkg/translate"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type answered struct {
	queryID   string
	results   []interface{}
	cacheTime int
}

type fakeAnswerer struct {
	calls []answered
}

func (f *fakeAnswerer) Answer(queryID string, results []interface{}, cacheTime int) error {
	f.calls = append(f.calls, answered{queryID, results, cacheTime})
	return nil
}

type submitted struct {
	userID   int64
	text     string
	selector string
}

// fakeSubmitter records submissions and, when outcome is set, delivers it
// synchronously so tests see the final answer without real debouncing.
type fakeSubmitter struct {
	calls   []submitted
	outcome *pipeline.Outcome
	token   uint64
}

func (f *fakeSubmitter) Submit(userID int64, text, selector string, deliver coalesce.DeliverFunc) {
	f.calls = append(f.calls, submitted{userID, text, selector})
	if f.outcome != nil {
		f.token++
		deliver(pipeline.Request{
			UserID: userID, Text: text, LanguageSelector: selector, Token: f.token,
		}, *f.outcome)
	}
}

func testHandler(t *testing.T, sub Submitter, ans Answerer) *Handler {
	t.Helper()
	al, err := allowlist.Parse(strings.NewReader("42\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return NewHandler(al, translate.DefaultCatalog(), sub, ans, WithMetrics(m))
}

func TestDeniedUserNeverReachesPipeline(t *testing.T) {
	sub := &fakeSubmitter{}
	ans := &fakeAnswerer{}
	h := testHandler(t, sub, ans)

	h.HandleInlineQuery(context.Background(), "q1", 999, "hello world")

	if len(sub.calls) != 0 {
		t.Fatalf("Submit calls = %d, want 0 for denied user", len(sub.calls))
	}
	if len(ans.calls) != 1 {
		t.Fatalf("Answer calls = %d, want 1", len(ans.calls))
	}
	art, ok := ans.calls[0].results[0].(tgbotapi.InlineQueryResultArticle)
	if !ok {
		t.Fatalf("result type = %T, want article", ans.calls[0].results[0])
	}
	if art.ID != "denied" {
		t.Errorf("result ID = %q, want %q", art.ID, "denied")
	}
}

func TestWhitespaceQueryShowsHelpWithoutScheduling(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n", "/help", "/help whatever"} {
		sub := &fakeSubmitter{}
		ans := &fakeAnswerer{}
		h := testHandler(t, sub, ans)

		h.HandleInlineQuery(context.Background(), "q1", 42, query)

		if len(sub.calls) != 0 {
			t.Errorf("query %q: Submit calls = %d, want 0", query, len(sub.calls))
		}
		if len(ans.calls) != 1 {
			t.Fatalf("query %q: Answer calls = %d, want 1", query, len(ans.calls))
		}
		art, ok := ans.calls[0].results[0].(tgbotapi.InlineQueryResultArticle)
		if !ok || art.ID != "help" {
			t.Errorf("query %q: result = %#v, want help article", query, ans.calls[0].results[0])
		}
		if ans.calls[0].cacheTime != cacheTimeStatic {
			t.Errorf("query %q: cacheTime = %d, want %d", query, ans.calls[0].cacheTime, cacheTimeStatic)
		}
	}
}

func TestPipelineQuerySubmitsParsedSelector(t *testing.T) {
	sub := &fakeSubmitter{}
	ans := &fakeAnswerer{}
	h := testHandler(t, sub, ans)

	h.HandleInlineQuery(context.Background(), "q1", 42, "/de hello world")

	if len(sub.calls) != 1 {
		t.Fatalf("Submit calls = %d, want 1", len(sub.calls))
	}
	got := sub.calls[0]
	if got.userID != 42 || got.selector != "de" || got.text != "hello world" {
		t.Errorf("Submit(%d, %q, %q)", got.userID, got.text, got.selector)
	}
	// No answer until the coalescer delivers.
	if len(ans.calls) != 0 {
		t.Errorf("Answer calls = %d, want 0 before delivery", len(ans.calls))
	}
}

func TestSuccessfulDeliveryAnswersWithGIF(t *testing.T) {
	sub := &fakeSubmitter{outcome: &pipeline.Outcome{
		OK:           true,
		DisplayText:  "hallo welt",
		LanguageName: "German",
		ArtifactURL:  "https://files.example/a.gif",
	}}
	ans := &fakeAnswerer{}
	h := testHandler(t, sub, ans)

	h.HandleInlineQuery(context.Background(), "q1", 42, "/de hello world")

	if len(ans.calls) != 1 {
		t.Fatalf("Answer calls = %d, want 1", len(ans.calls))
	}
	call := ans.calls[0]
	if call.cacheTime != cacheTimeResult {
		t.Errorf("cacheTime = %d, want %d", call.cacheTime, cacheTimeResult)
	}
	gif, ok := call.results[0].(tgbotapi.InlineQueryResultGIF)
	if !ok {
		t.Fatalf("result type = %T, want GIF", call.results[0])
	}
	if gif.URL != "https://files.example/a.gif" || gif.ThumbURL != gif.URL {
		t.Errorf("GIF URLs = %q / %q", gif.URL, gif.ThumbURL)
	}
	if gif.ID != "42-1" {
		t.Errorf("GIF ID = %q, want %q", gif.ID, "42-1")
	}
	if !strings.Contains(gif.Caption, "hello world") || !strings.Contains(gif.Caption, "hallo welt") {
		t.Errorf("Caption = %q, want original and translated text", gif.Caption)
	}
}

func TestFailedDeliveryAnswersWithExplanation(t *testing.T) {
	sub := &fakeSubmitter{outcome: &pipeline.Outcome{
		OK:     false,
		Reason: pipeline.ReasonTimedOut,
	}}
	ans := &fakeAnswerer{}
	h := testHandler(t, sub, ans)

	h.HandleInlineQuery(context.Background(), "q1", 42, "hello")

	if len(ans.calls) != 1 {
		t.Fatalf("Answer calls = %d, want 1", len(ans.calls))
	}
	art, ok := ans.calls[0].results[0].(tgbotapi.InlineQueryResultArticle)
	if !ok {
		t.Fatalf("result type = %T, want article", ans.calls[0].results[0])
	}
	if !strings.Contains(art.ID, string(pipeline.ReasonTimedOut)) {
		t.Errorf("result ID = %q, want it to carry the reason", art.ID)
	}
}
