package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docsearch.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, indexURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, indexURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, indexURL)
}
