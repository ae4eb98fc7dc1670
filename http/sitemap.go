package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docsearch"
)

// Ensure SitemapService implements docsearch.SitemapService.
var _ docsearch.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &SitemapService{client: client}
}

// SitemapURL returns the sitemap location for an index URL.
func SitemapURL(indexURL string) string {
	return strings.TrimSuffix(indexURL, "/") + "/sitemap.xml"
}

// DiscoverURLs fetches {indexURL}/sitemap.xml and returns every listed URL,
// de-duplicated in first-seen order. A sitemap index is resolved by
// fetching each child sitemap.
func (s *SitemapService) DiscoverURLs(ctx context.Context, indexURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	urls, err := s.processSitemap(ctx, SitemapURL(indexURL), make(map[string]bool))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(urls))
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			result = append(result, u)
		}
	}
	return result, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Avoid processing the same sitemap twice
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	switch root.Tag {
	case "sitemapindex":
		return s.processSitemapIndex(ctx, root, seen)
	case "urlset":
		return parseURLSet(root), nil
	default:
		return nil, fmt.Errorf("unexpected sitemap root element <%s>", root.Tag)
	}
}

// processSitemapIndex processes a <sitemapindex> element recursively.
// Children that fail are skipped; an error is returned only when every
// failing child leaves the union empty.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var allURLs []string
	var errs []error

	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		sitemapURL := strings.TrimSpace(loc.Text())
		if sitemapURL == "" {
			continue
		}

		urls, err := s.processSitemap(ctx, sitemapURL, seen)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			errs = append(errs, fmt.Errorf("child sitemap %s: %w", sitemapURL, err))
			continue
		}
		allURLs = append(allURLs, urls...)
	}

	if len(allURLs) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return allURLs, nil
}

// parseURLSet extracts URLs from a <urlset> element.
func parseURLSet(root *etree.Element) []string {
	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}
