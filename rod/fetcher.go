// Package rod renders client-side documentation sites with headless Chrome.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page render.
const DefaultFetchTimeout = 15 * time.Second

// Ensure Fetcher implements docsearch.Fetcher at compile time.
var _ docsearch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a headless Chrome browser.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	pool    *browserPool
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout  time.Duration
	maxPages int
}

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithMaxPages sets how many pages one browser process renders before it
// is replaced.
func WithMaxPages(n int) Option {
	return func(c *fetcherConfig) {
		c.maxPages = n
	}
}

// NewFetcher launches a headless browser. Close must be called when the
// Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := newBrowserPool(cfg.maxPages)
	if err != nil {
		return nil, err
	}
	return &Fetcher{pool: pool, timeout: cfg.timeout}, nil
}

// Fetch navigates to url, waits for the page to load and returns the
// rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", docsearch.Errorf(docsearch.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, err := f.pool.acquire()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", contextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", contextErr(ctx, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", contextErr(ctx, err)
	}
	return html, nil
}

// contextErr prefers the context's error so callers can match
// context.DeadlineExceeded and context.Canceled.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close shuts the browser down. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.pool.close()
}

// LauncherPID returns the process ID of the browser launcher, or 0 once
// closed.
func (f *Fetcher) LauncherPID() int {
	return f.pool.pid()
}
