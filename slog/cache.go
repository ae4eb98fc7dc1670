package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingCache implements docsearch.Cache.
var _ docsearch.Cache = (*LoggingCache)(nil)

// LoggingCache wraps a Cache with logging.
type LoggingCache struct {
	next   docsearch.Cache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next docsearch.Cache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// CacheSourcePages delegates to the wrapped cache and logs the counts.
func (c *LoggingCache) CacheSourcePages(ctx context.Context, src *docsearch.Source, docs []*docsearch.Document) (res *docsearch.CacheResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"source", src.ID,
			"documents", len(docs),
			"duration", time.Since(begin),
			"err", err,
		}
		if res != nil {
			attrs = append(attrs, "cached", res.Cached, "failed", res.Failed, "size_mb", res.SizeMB)
		}
		c.logger.Info("cache source", attrs...)
	}(time.Now())
	return c.next.CacheSourcePages(ctx, src, docs)
}

// Status delegates to the wrapped cache.
func (c *LoggingCache) Status(ctx context.Context) ([]*docsearch.CacheMetadata, error) {
	return c.next.Status(ctx)
}

// Read delegates to the wrapped cache and logs misses at debug level.
func (c *LoggingCache) Read(ctx context.Context, sourceID, url string) (string, error) {
	html, err := c.next.Read(ctx, sourceID, url)
	if err != nil {
		c.logger.Debug("cache read", "source", sourceID, "url", url, "err", err)
	}
	return html, err
}
