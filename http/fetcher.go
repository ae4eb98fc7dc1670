// Package http provides HTTP implementations of docsearch services: a plain
// fetcher for server-rendered pages and raw text, sitemap discovery and the
// REST API server.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/docsearch"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 15 * time.Second

// UserAgent identifies the crawler to documentation servers.
const UserAgent = "Mozilla/5.0 (compatible; docsearch/1.0; +https://github.com/fwojciec/docsearch)"

// ServerRenderedHeaders ask documentation hosts for a fully rendered HTML
// page rather than a client-side shell.
var ServerRenderedHeaders = map[string]string{
	"User-Agent":      UserAgent,
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
}

// RawTextHeaders are used for raw markdown and other plain-text fetches.
var RawTextHeaders = map[string]string{
	"User-Agent": UserAgent,
	"Accept":     "text/plain,text/markdown,*/*;q=0.8",
}

// Ensure Fetcher implements docsearch.Fetcher at compile time.
var _ docsearch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies using plain HTTP GET requests. It does not
// execute JavaScript. Failed requests are not retried.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	headers map[string]string
	limiter docsearch.DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (15s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHeaders sets the request headers sent with every fetch.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithLimiter enforces a per-host request ceiling.
func WithLimiter(l docsearch.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		headers: ServerRenderedHeaders,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the body of rawURL. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if f.limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", err
		}
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
