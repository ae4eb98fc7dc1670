package docsearch

import (
	"context"
	"time"
)

// MaxRemoteContentLength caps the content of remote documents, in characters.
const MaxRemoteContentLength = 10000

// Document is one indexed unit of content.
type Document struct {
	SourceID    string    `json:"source_id"`
	SourceName  string    `json:"source_name"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	PageName    string    `json:"page_name"`
	Content     string    `json:"content"`
	ContentHash string    `json:"content_hash,omitempty"`
	IndexedAt   time.Time `json:"indexed_at"`
	IsLocal     bool      `json:"is_local"`

	// Local documents only. FilePath is the identity key.
	FilePath     string    `json:"file_path,omitempty"`
	FileModified time.Time `json:"file_modified,omitzero"`

	// Set by the offline cache.
	CachePath string    `json:"cache_path,omitempty"`
	CacheHash string    `json:"cache_hash,omitempty"`
	CachedAt  time.Time `json:"cached_at,omitzero"`
	IsCached  bool      `json:"is_cached,omitempty"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.SourceID == "" {
		return Errorf(EINVALID, "document source ID required")
	}
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.IsLocal && d.FilePath == "" {
		return Errorf(EINVALID, "local document file path required")
	}
	return nil
}

// TruncateContent caps s at MaxRemoteContentLength characters.
func TruncateContent(s string) string {
	if len(s) <= MaxRemoteContentLength {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxRemoteContentLength {
			return s[:i]
		}
		n++
	}
	return s
}

// SourceSummary describes a source and how many documents it contributed.
type SourceSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        SourceType `json:"type"`
	Description string     `json:"description"`
	PageCount   int        `json:"page_count"`
	IsLocal     bool       `json:"is_local"`
}

// NewSourceSummary returns an empty summary for src.
func NewSourceSummary(src *Source) *SourceSummary {
	return &SourceSummary{
		ID:          src.ID,
		Name:        src.Name,
		Type:        src.Type,
		Description: src.Description,
		IsLocal:     src.Type.IsLocal(),
	}
}

// Summarize builds one summary per source with page counts derived from docs.
func Summarize(sources []*Source, docs []*Document) []*SourceSummary {
	counts := countBySource(docs)
	summaries := make([]*SourceSummary, 0, len(sources))
	for _, src := range sources {
		s := NewSourceSummary(src)
		s.PageCount = counts[src.ID]
		summaries = append(summaries, s)
	}
	return summaries
}

func countBySource(docs []*Document) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		counts[doc.SourceID]++
	}
	return counts
}

// Index is the persisted aggregate of documents and source summaries.
type Index struct {
	Pages       []*Document      `json:"pages"`
	Sources     []*SourceSummary `json:"sources"`
	LastUpdated time.Time        `json:"last_updated,omitzero"`
	TotalPages  int              `json:"total_pages"`
	BuildID     string           `json:"build_id,omitempty"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		Pages:   []*Document{},
		Sources: []*SourceSummary{},
	}
}

// Recount recomputes every summary's page count and the total from Pages.
func (idx *Index) Recount() {
	counts := countBySource(idx.Pages)
	for _, s := range idx.Sources {
		s.PageCount = counts[s.ID]
	}
	idx.TotalPages = len(idx.Pages)
}

// Summary returns the summary for a source ID, or nil.
func (idx *Index) Summary(id string) *SourceSummary {
	for _, s := range idx.Sources {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// EnsureSummary returns the summary for src, appending one if missing.
func (idx *Index) EnsureSummary(src *Source) *SourceSummary {
	if s := idx.Summary(src.ID); s != nil {
		return s
	}
	s := NewSourceSummary(src)
	idx.Sources = append(idx.Sources, s)
	return s
}

// FindByFilePath returns the position of the local document with the given
// file path, or -1. This is a linear scan over all pages.
func (idx *Index) FindByFilePath(path string) int {
	for i, doc := range idx.Pages {
		if doc.IsLocal && doc.FilePath == path {
			return i
		}
	}
	return -1
}

// UpsertLocal replaces the document with the same file path or appends it.
func (idx *Index) UpsertLocal(doc *Document) {
	if i := idx.FindByFilePath(doc.FilePath); i >= 0 {
		idx.Pages[i] = doc
		return
	}
	idx.Pages = append(idx.Pages, doc)
}

// RemoveByFilePath removes the local document with the given file path and
// returns it, or nil when no such document exists.
func (idx *Index) RemoveByFilePath(path string) *Document {
	i := idx.FindByFilePath(path)
	if i < 0 {
		return nil
	}
	doc := idx.Pages[i]
	idx.Pages = append(idx.Pages[:i], idx.Pages[i+1:]...)
	return doc
}

// ReplaceSource drops every document of sourceID and appends docs in their place.
func (idx *Index) ReplaceSource(sourceID string, docs []*Document) {
	kept := make([]*Document, 0, len(idx.Pages)+len(docs))
	for _, doc := range idx.Pages {
		if doc.SourceID != sourceID {
			kept = append(kept, doc)
		}
	}
	idx.Pages = append(kept, docs...)
}

// Info returns the externally visible index summary. Summaries are copied.
func (idx *Index) Info() *IndexInfo {
	sources := make([]*SourceSummary, len(idx.Sources))
	for i, s := range idx.Sources {
		c := *s
		sources[i] = &c
	}
	return &IndexInfo{
		TotalPages:  len(idx.Pages),
		LastUpdated: idx.LastUpdated,
		Sources:     sources,
	}
}

// IndexInfo is the summary returned by IndexService.IndexInfo.
type IndexInfo struct {
	TotalPages  int              `json:"total_pages"`
	LastUpdated time.Time        `json:"last_updated,omitzero"`
	Sources     []*SourceSummary `json:"sources"`
}

// IndexStore persists the index.
type IndexStore interface {
	// Load reads the persisted index. Callers treat any error as "no index yet".
	Load(ctx context.Context) (*Index, error)

	// Save backs up the previous file, overwrites it with idx and rewrites
	// the sidecar metadata file.
	Save(ctx context.Context, idx *Index) error
}
