package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingRegistry implements docsearch.SourceRegistry.
var _ docsearch.SourceRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a SourceRegistry with logging of loaded sources.
type LoggingRegistry struct {
	next   docsearch.SourceRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next docsearch.SourceRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Load delegates to the wrapped registry and logs the source counts.
func (r *LoggingRegistry) Load(ctx context.Context) (set *docsearch.SourceSet, err error) {
	defer func(begin time.Time) {
		if err != nil {
			r.logger.Error("load sources", "duration", time.Since(begin), "err", err)
			return
		}
		r.logger.Info("load sources",
			"online", len(set.Online),
			"offline", len(set.Offline),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return r.next.Load(ctx)
}

// ResolvePath delegates to the wrapped registry.
func (r *LoggingRegistry) ResolvePath(path string) string {
	return r.next.ResolvePath(path)
}
