// Package index implements docsearch.IndexService over an in-memory index
// that is persisted after every mutation.
//
// Mutating operations are serialized with a non-blocking lock: a second
// mutation while one is running fails with EBUSY instead of waiting.
// Readers see either the state before or after a mutation.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/crawl"
	"github.com/fwojciec/docsearch/search"
)

// Ensure Service implements docsearch.IndexService at compile time.
var _ docsearch.IndexService = (*Service)(nil)

// Service owns the index and exposes the knowledge base operations.
type Service struct {
	Registry docsearch.SourceRegistry
	Store    docsearch.IndexStore
	Builder  docsearch.IndexBuilder
	Local    docsearch.LocalIndexer

	// Crawlers re-crawls sources for a cache pass.
	Crawlers map[docsearch.SourceType]docsearch.SourceCrawler

	Cache     docsearch.Cache
	Converter docsearch.Converter
	Renderer  docsearch.Renderer
	Engine    *search.Engine
	Logger    *slog.Logger
	Now       func() time.Time

	write sync.Mutex
	mu    sync.RWMutex
	idx   *docsearch.Index
}

// Initialize loads the persisted index. Any load failure starts an empty
// index instead.
func (s *Service) Initialize(ctx context.Context) error {
	idx, err := s.Store.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger().Info("no usable index found, starting empty", "reason", err)
		idx = docsearch.NewIndex()
	} else {
		s.logger().Info("index loaded", "pages", len(idx.Pages), "sources", len(idx.Sources))
	}

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	return nil
}

// BuildIndex crawls every enabled source and replaces the index.
func (s *Service) BuildIndex(ctx context.Context) (*docsearch.IndexInfo, error) {
	if !s.write.TryLock() {
		return nil, busy()
	}
	defer s.write.Unlock()

	set, err := s.Registry.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx, err := s.Builder.Build(ctx, set, s.current().Pages)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return s.IndexInfo(ctx), nil
}

// Search ranks the indexed documents against query.
func (s *Service) Search(ctx context.Context, query string, opts docsearch.SearchOptions) ([]*docsearch.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine().Search(s.index().Pages, query, opts), nil
}

// IndexInfo returns the current index summary.
func (s *Service) IndexInfo(ctx context.Context) *docsearch.IndexInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index().Info()
}

// UpdateLocalFile re-indexes path within the offline source whose root
// contains it. Returns false when no offline source owns the path.
func (s *Service) UpdateLocalFile(ctx context.Context, path string) (bool, error) {
	if !s.write.TryLock() {
		return false, busy()
	}
	defer s.write.Unlock()

	path, err := absPath(path)
	if err != nil {
		return false, err
	}

	set, err := s.Registry.Load(ctx)
	if err != nil {
		return false, err
	}
	src, root := s.owner(set, path)
	if src == nil {
		s.logger().Debug("no offline source owns file", "path", path)
		return false, nil
	}

	doc, err := s.Local.IndexFile(ctx, src, root, path)
	if err != nil {
		return false, err
	}
	doc.ContentHash = crawl.ComputeHash(doc.Content)

	s.mu.Lock()
	idx := s.index()
	idx.UpsertLocal(doc)
	idx.EnsureSummary(src)
	idx.Recount()
	idx.LastUpdated = s.now()
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return false, err
	}
	s.logger().Info("local file updated", "source", src.ID, "path", path)
	return true, nil
}

// RemoveLocalFile drops the local document for path. Returns false when
// the path is not indexed.
func (s *Service) RemoveLocalFile(ctx context.Context, path string) (bool, error) {
	if !s.write.TryLock() {
		return false, busy()
	}
	defer s.write.Unlock()

	path, err := absPath(path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	idx := s.index()
	removed := idx.RemoveByFilePath(path)
	if removed != nil {
		idx.Recount()
		idx.LastUpdated = s.now()
	}
	s.mu.Unlock()

	if removed == nil {
		return false, nil
	}
	if err := s.save(ctx); err != nil {
		return false, err
	}
	s.logger().Info("local file removed", "source", removed.SourceID, "path", path)
	return true, nil
}

// CacheSources crawls each listed source and stores offline snapshots of
// its pages. The documents of every cached source are replaced in the
// index. Requests naming more than docsearch.MaxCacheSources sources are
// rejected without doing any work.
func (s *Service) CacheSources(ctx context.Context, sourceIDs []string) (*docsearch.CacheBatch, error) {
	ids := uniqueIDs(sourceIDs)
	if len(ids) == 0 {
		return nil, docsearch.Errorf(docsearch.EINVALID, "at least one source id required")
	}
	if len(ids) > docsearch.MaxCacheSources {
		return &docsearch.CacheBatch{
			Rejected: true,
			Message:  fmt.Sprintf("Max %d sources can be cached at once, got %d.", docsearch.MaxCacheSources, len(ids)),
			Results:  []*docsearch.CacheResult{},
		}, nil
	}
	if s.Cache == nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "offline cache is not configured")
	}

	if !s.write.TryLock() {
		return nil, busy()
	}
	defer s.write.Unlock()

	set, err := s.Registry.Load(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := s.cacheable(set, ids)
	if err != nil {
		return nil, err
	}

	batch := &docsearch.CacheBatch{Results: make([]*docsearch.CacheResult, 0, len(sources))}
	for _, src := range sources {
		batch.Results = append(batch.Results, s.cacheSource(ctx, src))
	}

	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return batch, nil
}

// cacheable resolves ids to sources that can be cached, failing on the
// first one that cannot.
func (s *Service) cacheable(set *docsearch.SourceSet, ids []string) ([]*docsearch.Source, error) {
	sources := make([]*docsearch.Source, 0, len(ids))
	for _, id := range ids {
		src := set.Find(id)
		if src == nil {
			return nil, docsearch.Errorf(docsearch.ENOTFOUND, "source %q not found or not enabled", id)
		}
		if src.Type.IsLocal() || !src.CacheOffline {
			return nil, docsearch.Errorf(docsearch.EINVALID, "source %q is not marked cache_offline", id)
		}
		if _, ok := s.Crawlers[src.Type]; !ok {
			return nil, docsearch.Errorf(docsearch.EINVALID, "source %q has unsupported type %q", id, src.Type)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// cacheSource crawls and caches one source and swaps its documents into
// the index. Failures leave the indexed documents of the source untouched.
func (s *Service) cacheSource(ctx context.Context, src *docsearch.Source) *docsearch.CacheResult {
	logger := s.logger().With("source", src.ID)

	docs, err := s.Crawlers[src.Type].Crawl(ctx, src)
	if err != nil {
		logger.Error("crawl for cache failed", "error", err)
		return &docsearch.CacheResult{SourceID: src.ID}
	}
	docs = crawl.Stamp(src, docs, logger)

	res, err := s.Cache.CacheSourcePages(ctx, src, docs)
	if err != nil {
		logger.Error("caching failed", "error", err)
		return &docsearch.CacheResult{SourceID: src.ID, Failed: len(docs)}
	}

	s.mu.Lock()
	idx := s.index()
	idx.ReplaceSource(src.ID, docs)
	idx.EnsureSummary(src)
	idx.Recount()
	idx.LastUpdated = s.now()
	s.mu.Unlock()

	return res
}

// CacheStatus returns the metadata of every cached source.
func (s *Service) CacheStatus(ctx context.Context) ([]*docsearch.CacheMetadata, error) {
	if s.Cache == nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "offline cache is not configured")
	}
	return s.Cache.Status(ctx)
}

// CachedPage returns the cached snapshot of url converted to Markdown.
func (s *Service) CachedPage(ctx context.Context, sourceID, url string) (string, error) {
	if s.Cache == nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "offline cache is not configured")
	}
	html, err := s.Cache.Read(ctx, sourceID, url)
	if err != nil {
		return "", err
	}
	return s.Converter.Convert(html)
}

// PreviewLocalFile renders an indexed local file as HTML. Files that are
// not in the index are refused.
func (s *Service) PreviewLocalFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := absPath(path)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	indexed := s.index().FindByFilePath(path) >= 0
	s.mu.RUnlock()
	if !indexed {
		return "", docsearch.Errorf(docsearch.ENOTFOUND, "file is not indexed: %s", path)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", docsearch.Errorf(docsearch.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return "", err
	}
	return s.Renderer.Render(string(data))
}

// owner returns the first offline source whose resolved root contains
// path and whose extension list accepts it, with that root.
func (s *Service) owner(set *docsearch.SourceSet, path string) (*docsearch.Source, string) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, src := range set.Offline {
		root, err := absPath(s.Registry.ResolvePath(src.Path))
		if err != nil {
			continue
		}
		if Contains(root, path) && slices.Contains(src.Extensions(), ext) {
			return src, root
		}
	}
	return nil, ""
}

// Contains reports whether path lies strictly inside root. Both must be
// clean absolute paths.
func Contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// save persists the current index under a read lock.
func (s *Service) save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.Store.Save(ctx, s.index()); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	return nil
}

// current returns the index pointer under a read lock.
func (s *Service) current() *docsearch.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index()
}

// index must be called with mu held. A service that was never initialized
// works on an empty index.
func (s *Service) index() *docsearch.Index {
	if s.idx == nil {
		return docsearch.NewIndex()
	}
	return s.idx
}

func (s *Service) engine() *search.Engine {
	if s.Engine == nil {
		return search.NewEngine()
	}
	return s.Engine
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func busy() error {
	return docsearch.Errorf(docsearch.EBUSY, "another index operation is in progress")
}

func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", docsearch.Errorf(docsearch.EINVALID, "path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "invalid path %q: %v", path, err)
	}
	return abs, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
