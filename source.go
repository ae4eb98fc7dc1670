package docsearch

import (
	"context"
	"strings"
)

// SourceType identifies the crawl strategy used for a source.
type SourceType string

// Supported source types.
const (
	SourceTypeGitBook    SourceType = "gitbook"
	SourceTypeDocusaurus SourceType = "docusaurus"
	SourceTypeMarkdown   SourceType = "markdown"
	SourceTypeLocal      SourceType = "local"
)

// IsLocal reports whether the type describes an offline (filesystem) source.
func (t SourceType) IsLocal() bool {
	return t == SourceTypeLocal
}

// DefaultFileExtensions is used when a local source does not list any.
var DefaultFileExtensions = []string{".md"}

// Source describes a configured origin of documents.
//
// Online sources carry IndexURL (gitbook), BaseURL and Pages (docusaurus)
// or URLs (markdown). Local sources carry Path and FileExtensions.
type Source struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Name        string     `json:"name" yaml:"name" validate:"required"`
	Type        SourceType `json:"type" yaml:"type" validate:"required"`
	Enabled     bool       `json:"enabled" yaml:"enabled"`
	Description string     `json:"description,omitempty" yaml:"description"`

	IndexURL     string   `json:"index_url,omitempty" yaml:"index_url" validate:"required_if=Type gitbook,omitempty,url"`
	BaseURL      string   `json:"base_url,omitempty" yaml:"base_url" validate:"required_if=Type docusaurus,omitempty,url"`
	Pages        []string `json:"pages,omitempty" yaml:"pages"`
	URLs         []string `json:"urls,omitempty" yaml:"urls" validate:"required_if=Type markdown,dive,url"`
	CacheOffline bool     `json:"cache_offline,omitempty" yaml:"cache_offline"`

	Path           string   `json:"path,omitempty" yaml:"path" validate:"required_if=Type local"`
	FileExtensions []string `json:"file_extensions,omitempty" yaml:"file_extensions"`
}

// Extensions returns the lower-cased file extension allow-list for a local
// source, falling back to DefaultFileExtensions.
func (s *Source) Extensions() []string {
	if len(s.FileExtensions) == 0 {
		return DefaultFileExtensions
	}
	exts := make([]string, 0, len(s.FileExtensions))
	for _, ext := range s.FileExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return DefaultFileExtensions
	}
	return exts
}

// SourceSet holds the enabled sources split into online and offline lists.
type SourceSet struct {
	Online  []*Source
	Offline []*Source
}

// All returns online sources followed by offline sources.
func (s *SourceSet) All() []*Source {
	all := make([]*Source, 0, len(s.Online)+len(s.Offline))
	all = append(all, s.Online...)
	return append(all, s.Offline...)
}

// Find returns the enabled source with the given ID, or nil.
func (s *SourceSet) Find(id string) *Source {
	for _, src := range s.All() {
		if src.ID == id {
			return src
		}
	}
	return nil
}

// SourceRegistry loads source descriptors.
type SourceRegistry interface {
	// Load reads the source configuration and returns the enabled sources.
	// Returns ECONFIG if the configuration is missing or malformed.
	Load(ctx context.Context) (*SourceSet, error)

	// ResolvePath resolves a configured filesystem path. Paths starting
	// with "./" or "../" are resolved against the project root; anything
	// else is returned unchanged.
	ResolvePath(path string) string
}
