package docsearch

import "context"

// MatchType names the strongest signal that matched a document.
type MatchType string

// Match types in signal order.
const (
	MatchExactTitle    MatchType = "exact_title"
	MatchTitleContains MatchType = "title_contains"
	MatchPageName      MatchType = "page_name"
	MatchURL           MatchType = "url"
	MatchContent       MatchType = "content"
	MatchFuzzy         MatchType = "fuzzy"
)

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Fuzzy enables the subsequence-similarity fallback for documents
	// that no other signal matched.
	Fuzzy bool `json:"fuzzy"`

	// Limit caps the number of results. Zero means no limit.
	Limit int `json:"limit,omitempty"`
}

// Snippet is a window of document content around the first match.
// Offsets are in characters relative to Text.
type Snippet struct {
	Text            string `json:"text"`
	HighlightStart  int    `json:"highlight_start"`
	HighlightLength int    `json:"highlight_length"`
}

// SearchResult is a scored document.
type SearchResult struct {
	Document  *Document `json:"document"`
	Score     int       `json:"relevance_score"`
	MatchType MatchType `json:"match_type"`
	Snippet   Snippet   `json:"snippet"`
}

// IndexService exposes the knowledge base operations to external callers.
// Mutating operations fail with EBUSY while another one is in progress.
type IndexService interface {
	// BuildIndex crawls every enabled source and replaces the index.
	BuildIndex(ctx context.Context) (*IndexInfo, error)

	// Search ranks documents against query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]*SearchResult, error)

	// IndexInfo returns the current index summary.
	IndexInfo(ctx context.Context) *IndexInfo

	// UpdateLocalFile re-indexes one local file. Returns false when no
	// offline source owns the path.
	UpdateLocalFile(ctx context.Context, path string) (bool, error)

	// RemoveLocalFile drops one local file from the index. Returns false
	// when the path is not indexed.
	RemoveLocalFile(ctx context.Context, path string) (bool, error)

	// CacheSources crawls and caches the given cacheable sources.
	CacheSources(ctx context.Context, sourceIDs []string) (*CacheBatch, error)

	// CacheStatus returns the metadata of every cached source.
	CacheStatus(ctx context.Context) ([]*CacheMetadata, error)

	// CachedPage returns the cached snapshot of url as Markdown.
	CachedPage(ctx context.Context, sourceID, url string) (string, error)

	// PreviewLocalFile renders an indexed local markdown file as HTML.
	PreviewLocalFile(ctx context.Context, path string) (string, error)
}
