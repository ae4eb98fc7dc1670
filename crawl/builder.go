package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/google/uuid"
)

var _ docsearch.IndexBuilder = (*Builder)(nil)

// Builder assembles a complete index from a set of sources.
type Builder struct {
	// Crawlers maps each online source type to its crawler. Sources of any
	// other type are skipped with a warning.
	Crawlers map[docsearch.SourceType]docsearch.SourceCrawler

	Local    docsearch.LocalIndexer
	Registry docsearch.SourceRegistry
	Logger   *slog.Logger
	Now      func() time.Time

	// NewID returns the build ID. Defaults to a random UUID.
	NewID func() string
}

// Build crawls every source of set and returns a fresh index. previous
// holds the documents of the last index; unchanged local files among them
// are reused. Failing sources are logged and contribute no documents.
func (b *Builder) Build(ctx context.Context, set *docsearch.SourceSet, previous []*docsearch.Document) (*docsearch.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := loggerOrDiscard(b.Logger)
	start := time.Now()

	var pages []*docsearch.Document
	for _, src := range set.Online {
		docs := b.crawlOnline(ctx, src, logger)
		pages = append(pages, Stamp(src, docs, logger)...)
	}
	for _, src := range set.Offline {
		docs := b.indexLocal(ctx, src, previous, logger)
		pages = append(pages, Stamp(src, docs, logger)...)
	}

	idx := docsearch.NewIndex()
	idx.Pages = append(idx.Pages, pages...)
	idx.Sources = docsearch.Summarize(set.All(), pages)
	idx.TotalPages = len(pages)
	idx.LastUpdated = nowOrDefault(b.Now)
	idx.BuildID = b.newID()

	logger.Info("index built",
		"pages", idx.TotalPages,
		"sources", len(idx.Sources),
		"build_id", idx.BuildID,
		"duration", time.Since(start),
	)
	return idx, nil
}

func (b *Builder) crawlOnline(ctx context.Context, src *docsearch.Source, logger *slog.Logger) []*docsearch.Document {
	crawler, ok := b.Crawlers[src.Type]
	if !ok {
		logger.Warn("unknown source type, skipping", "source", src.ID, "type", src.Type)
		return nil
	}

	docs, err := crawler.Crawl(ctx, src)
	if err != nil {
		logger.Error("source failed", "source", src.ID, "error", err)
		return nil
	}
	return docs
}

func (b *Builder) indexLocal(ctx context.Context, src *docsearch.Source, previous []*docsearch.Document, logger *slog.Logger) []*docsearch.Document {
	if b.Local == nil {
		logger.Warn("no local indexer configured, skipping", "source", src.ID)
		return nil
	}

	root := src.Path
	if b.Registry != nil {
		root = b.Registry.ResolvePath(src.Path)
	}

	var prior []*docsearch.Document
	for _, doc := range previous {
		if doc.IsLocal && doc.SourceID == src.ID {
			prior = append(prior, doc)
		}
	}

	docs, err := b.Local.IndexSource(ctx, src, root, prior)
	if err != nil {
		logger.Error("source failed", "source", src.ID, "error", err)
		return nil
	}
	return docs
}

// Stamp fills in source fields and content hashes and drops invalid
// documents. A document that needs changes is copied first, so documents
// shared with a live index are never written.
func Stamp(src *docsearch.Source, docs []*docsearch.Document, logger *slog.Logger) []*docsearch.Document {
	logger = loggerOrDiscard(logger)
	out := make([]*docsearch.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.SourceID != src.ID || doc.SourceName != src.Name || doc.ContentHash == "" {
			c := *doc
			c.SourceID = src.ID
			c.SourceName = src.Name
			if c.ContentHash == "" {
				c.ContentHash = ComputeHash(c.Content)
			}
			doc = &c
		}
		if err := doc.Validate(); err != nil {
			logger.Warn("dropping invalid document", "source", src.ID, "url", doc.URL, "error", err)
			continue
		}
		out = append(out, doc)
	}
	return out
}

func (b *Builder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}
