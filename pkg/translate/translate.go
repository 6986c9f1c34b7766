// Package translate provides the translation stage: a client for a
// Google-Translate-compatible endpoint plus the static language catalog.
//
// The stage never fails from the caller's point of view. Any transport error,
// non-success status, or unparseable body degrades to the original input text
// with the no-translation marker, reported via [Result.Degraded].
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the public Google Translate web endpoint.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

const defaultTimeout = 10 * time.Second

// Fallback language marker used when translation degrades: the text is passed
// through untranslated.
const (
	FallbackLanguageName = "English"
	FallbackLanguageCode = "en"
)

// Result is the outcome of one translation call. When Degraded is true, Text
// is the original input and the language fields carry the fallback marker.
type Result struct {
	Text         string
	LanguageName string
	LanguageCode string
	Degraded     bool
}

// Option configures a [Client].
type Option func(*Client)

// WithTimeout sets the per-call HTTP timeout. Defaults to 10s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client calls the remote translation endpoint. It is safe for concurrent use.
type Client struct {
	endpoint   string
	catalog    *Catalog
	httpClient *http.Client
}

// New creates a translation Client for the given endpoint and catalog.
// endpoint defaults to [DefaultEndpoint] when empty.
func New(endpoint string, catalog *Catalog, opts ...Option) (*Client, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("translate: catalog must not be empty")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		catalog:    catalog,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Translate translates text into the language named by selector. An empty
// selector, [SelectorRandom], or an unknown code all mean a uniformly random
// catalog pick at call time. The source language is auto-detected.
//
// Translate always returns a usable Result: remote failures degrade to the
// original text with the fallback language marker.
func (c *Client) Translate(ctx context.Context, text, selector string) Result {
	target := c.resolveTarget(selector)

	translated, err := c.call(ctx, text, target.Code)
	if err != nil {
		slog.Warn("translation degraded to original text",
			"target", target.Code, "err", err)
		return Result{
			Text:         text,
			LanguageName: FallbackLanguageName,
			LanguageCode: FallbackLanguageCode,
			Degraded:     true,
		}
	}

	return Result{
		Text:         translated,
		LanguageName: target.Name,
		LanguageCode: target.Code,
	}
}

// resolveTarget maps a selector to a concrete catalog entry, picking randomly
// for the random selector, an empty selector, or an unrecognised code.
func (c *Client) resolveTarget(selector string) Language {
	if selector != "" && selector != SelectorRandom {
		if name, ok := c.catalog.Name(selector); ok {
			return Language{Code: selector, Name: name}
		}
	}
	return c.catalog.Pick()
}

// call performs the HTTP request and extracts the translated text from the
// endpoint's nested-array response shape: result[0][0][0] is the translation
// of the first segment.
func (c *Client) call(ctx context.Context, text, targetCode string) (string, error) {
	params := url.Values{
		"client": {"gtx"},
		"sl":     {"auto"}, // auto-detect source language
		"tl":     {targetCode},
		"dt":     {"t"},
		"q":      {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: read response body: %w", err)
	}

	return extractTranslation(body)
}

// extractTranslation pulls the translated string out of the endpoint's
// untyped JSON response.
func extractTranslation(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("translate: parse response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("translate: empty response payload")
	}
	segments, ok := payload[0].([]any)
	if !ok || len(segments) == 0 {
		return "", fmt.Errorf("translate: unexpected response shape")
	}
	first, ok := segments[0].([]any)
	if !ok || len(first) == 0 {
		return "", fmt.Errorf("translate: unexpected segment shape")
	}
	text, ok := first[0].(string)
	if !ok || text == "" {
		return "", fmt.Errorf("translate: missing translated text")
	}
	return text, nil
}
