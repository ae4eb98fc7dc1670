package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.SourceRegistry = (*SourceRegistry)(nil)

// SourceRegistry is a mock implementation of docsearch.SourceRegistry.
type SourceRegistry struct {
	LoadFn        func(ctx context.Context) (*docsearch.SourceSet, error)
	ResolvePathFn func(path string) string
}

func (r *SourceRegistry) Load(ctx context.Context) (*docsearch.SourceSet, error) {
	return r.LoadFn(ctx)
}

func (r *SourceRegistry) ResolvePath(path string) string {
	return r.ResolvePathFn(path)
}
