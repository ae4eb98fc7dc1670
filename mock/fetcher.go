package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docsearch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ docsearch.Pacer = (*Pacer)(nil)

// Pacer is a mock implementation of docsearch.Pacer.
type Pacer struct {
	WaitFn func(ctx context.Context) error
}

func (p *Pacer) Wait(ctx context.Context) error {
	return p.WaitFn(ctx)
}

var _ docsearch.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of docsearch.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
