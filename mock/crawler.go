package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.SourceCrawler = (*SourceCrawler)(nil)

// SourceCrawler is a mock implementation of docsearch.SourceCrawler.
type SourceCrawler struct {
	CrawlFn func(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error)
}

func (c *SourceCrawler) Crawl(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
	return c.CrawlFn(ctx, src)
}

var _ docsearch.LocalIndexer = (*LocalIndexer)(nil)

// LocalIndexer is a mock implementation of docsearch.LocalIndexer.
type LocalIndexer struct {
	IndexSourceFn func(ctx context.Context, src *docsearch.Source, root string, previous []*docsearch.Document) ([]*docsearch.Document, error)
	IndexFileFn   func(ctx context.Context, src *docsearch.Source, root string, path string) (*docsearch.Document, error)
}

func (l *LocalIndexer) IndexSource(ctx context.Context, src *docsearch.Source, root string, previous []*docsearch.Document) ([]*docsearch.Document, error) {
	return l.IndexSourceFn(ctx, src, root, previous)
}

func (l *LocalIndexer) IndexFile(ctx context.Context, src *docsearch.Source, root string, path string) (*docsearch.Document, error) {
	return l.IndexFileFn(ctx, src, root, path)
}

var _ docsearch.IndexBuilder = (*IndexBuilder)(nil)

// IndexBuilder is a mock implementation of docsearch.IndexBuilder.
type IndexBuilder struct {
	BuildFn func(ctx context.Context, set *docsearch.SourceSet, previous []*docsearch.Document) (*docsearch.Index, error)
}

func (b *IndexBuilder) Build(ctx context.Context, set *docsearch.SourceSet, previous []*docsearch.Document) (*docsearch.Index, error) {
	return b.BuildFn(ctx, set, previous)
}
