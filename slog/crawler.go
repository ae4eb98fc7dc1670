package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingSourceCrawler implements docsearch.SourceCrawler.
var _ docsearch.SourceCrawler = (*LoggingSourceCrawler)(nil)

// LoggingSourceCrawler wraps a SourceCrawler with per-source logging.
type LoggingSourceCrawler struct {
	next   docsearch.SourceCrawler
	logger *slog.Logger
}

// NewLoggingSourceCrawler creates a new LoggingSourceCrawler.
func NewLoggingSourceCrawler(next docsearch.SourceCrawler, logger *slog.Logger) *LoggingSourceCrawler {
	return &LoggingSourceCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped crawler and logs the outcome.
func (c *LoggingSourceCrawler) Crawl(ctx context.Context, src *docsearch.Source) (docs []*docsearch.Document, err error) {
	c.logger.Info("crawl started", "source", src.ID, "type", src.Type)
	defer func(begin time.Time) {
		c.logger.Info("crawl finished",
			"source", src.ID,
			"type", src.Type,
			"documents", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, src)
}
