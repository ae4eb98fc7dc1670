package docsearch

import "context"

// SourceCrawler produces documents for one online source type.
type SourceCrawler interface {
	// Crawl fetches the source's pages and returns normalized documents.
	// Per-page failures are skipped; an error means the whole source failed.
	Crawl(ctx context.Context, src *Source) ([]*Document, error)
}

// LocalIndexer turns local directory trees into documents.
type LocalIndexer interface {
	// IndexSource walks root and returns one document per matching file.
	// Documents in previous whose file path and modification time are
	// unchanged are reused as-is.
	IndexSource(ctx context.Context, src *Source, root string, previous []*Document) ([]*Document, error)

	// IndexFile indexes a single file belonging to src.
	IndexFile(ctx context.Context, src *Source, root string, path string) (*Document, error)
}

// IndexBuilder assembles a complete index from a set of sources.
type IndexBuilder interface {
	// Build crawls every source of set. previous holds the documents of the
	// last index so unchanged local files can be reused.
	Build(ctx context.Context, set *SourceSet, previous []*Document) (*Index, error)
}
