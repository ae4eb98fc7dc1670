package docsearch

import "context"

// Fetcher retrieves the body of a URL as text.
type Fetcher interface {
	// Fetch returns the response body for url. Non-2xx responses,
	// timeouts and connection failures are returned as errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// Pacer throttles sequential fetches against a remote server.
type Pacer interface {
	// Wait blocks for the pacing interval.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context) error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
