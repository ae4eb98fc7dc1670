package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of docsearch.IndexStore.
type IndexStore struct {
	LoadFn func(ctx context.Context) (*docsearch.Index, error)
	SaveFn func(ctx context.Context, idx *docsearch.Index) error
}

func (s *IndexStore) Load(ctx context.Context) (*docsearch.Index, error) {
	return s.LoadFn(ctx)
}

func (s *IndexStore) Save(ctx context.Context, idx *docsearch.Index) error {
	return s.SaveFn(ctx, idx)
}
