package docsearch

import (
	"context"
	"time"
)

// MaxCacheSources bounds how many sources one cache request may cover.
const MaxCacheSources = 5

// CacheResult reports the outcome of caching one source.
type CacheResult struct {
	SourceID  string  `json:"source_id"`
	Cached    int     `json:"cached"`
	Failed    int     `json:"failed"`
	SizeBytes int64   `json:"size_bytes"`
	SizeMB    float64 `json:"size_mb"`
}

// CacheMetadata is the per-source summary written next to cached pages.
type CacheMetadata struct {
	SourceID       string    `json:"source_id"`
	SourceName     string    `json:"source_name"`
	TotalPages     int       `json:"total_pages"`
	CachedPages    int       `json:"cached_pages"`
	FailedPages    int       `json:"failed_pages"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	TotalSizeMB    float64   `json:"total_size_mb"`
	CachedAt       time.Time `json:"cached_at"`
}

// CacheBatch is the outcome of a multi-source cache request. A request over
// the source cap is rejected with a message rather than an error.
type CacheBatch struct {
	Rejected bool           `json:"rejected"`
	Message  string         `json:"message,omitempty"`
	Results  []*CacheResult `json:"results"`
}

// Cache stores stripped HTML snapshots of remote documents, keyed by a
// hash of their URL.
type Cache interface {
	// CacheSourcePages fetches and stores every document of src and sets
	// the cache fields on each successfully cached document.
	CacheSourcePages(ctx context.Context, src *Source, docs []*Document) (*CacheResult, error)

	// Status returns the metadata of every cached source.
	Status(ctx context.Context) ([]*CacheMetadata, error)

	// Read returns the cached HTML snapshot of url.
	// Returns ENOTFOUND if the page is not cached.
	Read(ctx context.Context, sourceID, url string) (string, error)
}

// MB converts a byte count to megabytes rounded to two decimals.
func MB(n int64) float64 {
	return float64(int64(float64(n)/(1024*1024)*100+0.5)) / 100
}
