package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.Cache = (*Cache)(nil)

// Cache is a mock implementation of docsearch.Cache.
type Cache struct {
	CacheSourcePagesFn func(ctx context.Context, src *docsearch.Source, docs []*docsearch.Document) (*docsearch.CacheResult, error)
	StatusFn           func(ctx context.Context) ([]*docsearch.CacheMetadata, error)
	ReadFn             func(ctx context.Context, sourceID, url string) (string, error)
}

func (c *Cache) CacheSourcePages(ctx context.Context, src *docsearch.Source, docs []*docsearch.Document) (*docsearch.CacheResult, error) {
	return c.CacheSourcePagesFn(ctx, src, docs)
}

func (c *Cache) Status(ctx context.Context) ([]*docsearch.CacheMetadata, error) {
	return c.StatusFn(ctx)
}

func (c *Cache) Read(ctx context.Context, sourceID, url string) (string, error) {
	return c.ReadFn(ctx, sourceID, url)
}
