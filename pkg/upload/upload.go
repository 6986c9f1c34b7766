// Package upload posts encoded artifacts to a temporary file host and
// normalises its reply into a canonical URL.
//
// The host's response body is not a fixed schema. Known shapes are tried in
// order: an object with a files list, an object with a single top-level url
// field, an array of per-file objects, and a bare-text URL body. The first
// matching shape wins.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the public uguu.se upload endpoint.
const DefaultEndpoint = "https://uguu.se/upload"

const defaultTimeout = 30 * time.Second

// minURLLength is the shortest string accepted as a plausible artifact URL.
const minURLLength = 11

var (
	// ErrNoURL means the host replied successfully but no known response
	// shape yielded a URL.
	ErrNoURL = errors.New("upload: no url in host response")

	// ErrInvalidURL means the host returned a URL that fails syntactic
	// validation. The HTTP call itself succeeded.
	ErrInvalidURL = errors.New("upload: host returned an invalid url")
)

// Option configures a [Client].
type Option func(*Client)

// WithTimeout sets the per-upload HTTP timeout. Defaults to 30s.
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

// Client uploads artifacts via multipart POST. It is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates an upload Client for the given endpoint, defaulting to
// [DefaultEndpoint] when empty.
func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Upload posts data as a multipart file upload under filename and returns the
// canonical artifact URL extracted from the host's reply. A syntactically
// invalid returned URL yields [ErrInvalidURL]; a reply matching no known
// shape yields [ErrNoURL].
func (c *Client) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files[]"; filename=%q`, filename))
	header.Set("Content-Type", "image/gif")

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("upload: create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("upload: write artifact data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("upload: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("upload: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload: host returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	u, err := extractURL(respBody)
	if err != nil {
		return "", err
	}
	if !validURL(u) {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, u)
	}
	return u, nil
}

// shapeMatcher attempts to pull a URL out of one known response shape.
// It reports false when the body does not match the shape or the shape holds
// no usable URL.
type shapeMatcher func(body []byte) (string, bool)

// matchers are tried in order; the first match wins.
var matchers = []shapeMatcher{
	matchFilesObject,
	matchURLObject,
	matchFileArray,
	matchBareText,
}

// extractURL runs body through the known shape matchers.
func extractURL(body []byte) (string, error) {
	for _, m := range matchers {
		if u, ok := m(body); ok {
			return u, nil
		}
	}
	return "", ErrNoURL
}

// matchFilesObject handles {"files":[{"url":"..."}]}.
func matchFilesObject(body []byte) (string, bool) {
	var v struct {
		Files []struct {
			URL string `json:"url"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", false
	}
	if len(v.Files) == 0 || v.Files[0].URL == "" {
		return "", false
	}
	return v.Files[0].URL, true
}

// matchURLObject handles {"url":"..."}.
func matchURLObject(body []byte) (string, bool) {
	var v struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", false
	}
	return v.URL, v.URL != ""
}

// matchFileArray handles [{"url":"..."}].
func matchFileArray(body []byte) (string, bool) {
	var v []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", false
	}
	if len(v) == 0 || v[0].URL == "" {
		return "", false
	}
	return v[0].URL, true
}

// matchBareText handles a plain-text URL body.
func matchBareText(body []byte) (string, bool) {
	s := strings.TrimSpace(string(body))
	if !strings.HasPrefix(s, "http") {
		return "", false
	}
	return s, true
}

// validURL reports whether u is a syntactically plausible artifact URL:
// http or https scheme, a host, and a minimum overall length.
func validURL(u string) bool {
	if len(u) < minURLLength {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
