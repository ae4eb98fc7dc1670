package docsearch

import "context"

// SitemapService discovers URLs from a site's sitemap.
type SitemapService interface {
	// DiscoverURLs fetches {indexURL}/sitemap.xml and returns every <loc>
	// it lists. Sitemap indexes are resolved by fetching each child sitemap
	// and taking the union of their URLs. Returns an error when the sitemap
	// is absent or cannot be parsed.
	DiscoverURLs(ctx context.Context, indexURL string) ([]string, error)
}
