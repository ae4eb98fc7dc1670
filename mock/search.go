package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.IndexService = (*IndexService)(nil)

// IndexService is a mock implementation of docsearch.IndexService.
type IndexService struct {
	BuildIndexFn       func(ctx context.Context) (*docsearch.IndexInfo, error)
	SearchFn           func(ctx context.Context, query string, opts docsearch.SearchOptions) ([]*docsearch.SearchResult, error)
	IndexInfoFn        func(ctx context.Context) *docsearch.IndexInfo
	UpdateLocalFileFn  func(ctx context.Context, path string) (bool, error)
	RemoveLocalFileFn  func(ctx context.Context, path string) (bool, error)
	CacheSourcesFn     func(ctx context.Context, sourceIDs []string) (*docsearch.CacheBatch, error)
	CacheStatusFn      func(ctx context.Context) ([]*docsearch.CacheMetadata, error)
	CachedPageFn       func(ctx context.Context, sourceID, url string) (string, error)
	PreviewLocalFileFn func(ctx context.Context, path string) (string, error)
}

func (s *IndexService) BuildIndex(ctx context.Context) (*docsearch.IndexInfo, error) {
	return s.BuildIndexFn(ctx)
}

func (s *IndexService) Search(ctx context.Context, query string, opts docsearch.SearchOptions) ([]*docsearch.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}

func (s *IndexService) IndexInfo(ctx context.Context) *docsearch.IndexInfo {
	return s.IndexInfoFn(ctx)
}

func (s *IndexService) UpdateLocalFile(ctx context.Context, path string) (bool, error) {
	return s.UpdateLocalFileFn(ctx, path)
}

func (s *IndexService) RemoveLocalFile(ctx context.Context, path string) (bool, error) {
	return s.RemoveLocalFileFn(ctx, path)
}

func (s *IndexService) CacheSources(ctx context.Context, sourceIDs []string) (*docsearch.CacheBatch, error) {
	return s.CacheSourcesFn(ctx, sourceIDs)
}

func (s *IndexService) CacheStatus(ctx context.Context) ([]*docsearch.CacheMetadata, error) {
	return s.CacheStatusFn(ctx)
}

func (s *IndexService) CachedPage(ctx context.Context, sourceID, url string) (string, error) {
	return s.CachedPageFn(ctx, sourceID, url)
}

func (s *IndexService) PreviewLocalFile(ctx context.Context, path string) (string, error) {
	return s.PreviewLocalFileFn(ctx, path)
}
