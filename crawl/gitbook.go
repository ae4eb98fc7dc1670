package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/bloom"
)

var _ docsearch.SourceCrawler = (*GitBookCrawler)(nil)

// GitBookCrawler crawls GitBook-hosted documentation.
type GitBookCrawler struct {
	Sitemaps  docsearch.SitemapService
	Fetcher   docsearch.Fetcher
	Extractor docsearch.Extractor
	Links     docsearch.LinkHarvester
	Pacer     docsearch.Pacer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Crawl discovers the pages of src and extracts each one. Pages that fail
// to fetch or extract, or whose text is shorter than MinContentLength, are
// skipped. An error is returned only when no page list could be obtained.
func (c *GitBookCrawler) Crawl(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
	logger := loggerOrDiscard(c.Logger).With("source", src.ID)

	urls, indexHTML, err := c.discover(ctx, src, logger)
	if err != nil {
		return nil, err
	}

	// Nothing to follow: the index page is the whole source.
	if len(urls) == 0 {
		logger.Warn("no links found, indexing the index page itself", "url", src.IndexURL)
		doc, err := c.document(src, src.IndexURL, indexHTML)
		if err != nil {
			return nil, err
		}
		return []*docsearch.Document{doc}, nil
	}

	var docs []*docsearch.Document
	var skipped int
	for i, u := range urls {
		html, err := c.Fetcher.Fetch(ctx, u)
		pace(ctx, c.Pacer)
		if err != nil {
			logger.Warn("fetch failed", "url", u, "error", err)
			skipped++
			continue
		}

		doc, err := c.document(src, u, html)
		if err != nil {
			logger.Warn("extract failed", "url", u, "error", err)
			skipped++
			continue
		}
		if len([]rune(doc.Content)) < MinContentLength {
			logger.Debug("content too short", "url", u, "length", len(doc.Content))
			skipped++
			continue
		}

		docs = append(docs, doc)
		logger.Debug("page indexed", "url", u, "progress", fmt.Sprintf("%d/%d", i+1, len(urls)))
	}

	logger.Info("source crawled", "pages", len(docs), "skipped", skipped, "discovered", len(urls))
	return docs, nil
}

// discover returns the page URLs of src. It prefers the sitemap and falls
// back to harvesting links from the index page. When it had to fetch the
// index page, its HTML is returned too.
func (c *GitBookCrawler) discover(ctx context.Context, src *docsearch.Source, logger *slog.Logger) ([]string, string, error) {
	sitemapURLs, err := c.Sitemaps.DiscoverURLs(ctx, src.IndexURL)
	if err != nil {
		logger.Info("sitemap unavailable, falling back to link harvesting", "error", err)
	} else {
		inScope := FilterScope(sitemapURLs, src.IndexURL)
		if len(inScope) > 0 {
			logger.Info("sitemap discovered", "urls", len(inScope), "listed", len(sitemapURLs))
			return inScope, "", nil
		}
		logger.Info("sitemap has no in-scope URLs, falling back to link harvesting", "listed", len(sitemapURLs))
	}

	html, err := c.Fetcher.Fetch(ctx, src.IndexURL)
	pace(ctx, c.Pacer)
	if err != nil {
		return nil, "", fmt.Errorf("fetch index page: %w", err)
	}

	links, err := c.Links.HarvestLinks(html, src.IndexURL, MaxFallbackLinks)
	if err != nil {
		return nil, "", fmt.Errorf("harvest links: %w", err)
	}
	logger.Info("links harvested", "links", len(links))
	return bloom.Unique(links), html, nil
}

func (c *GitBookCrawler) document(src *docsearch.Source, pageURL, html string) (*docsearch.Document, error) {
	res, err := c.Extractor.Extract(html, pageURL)
	if err != nil {
		return nil, err
	}
	return newRemoteDocument(src, pageURL, res.Title, PageNameFromURL(pageURL), res.Text, nowOrDefault(c.Now)), nil
}

// FilterScope keeps the URLs that start with base and differ from it,
// comparing with trailing slashes trimmed, de-duplicated in order.
func FilterScope(urls []string, base string) []string {
	base = strings.TrimSuffix(base, "/")
	var out []string
	for _, u := range bloom.Unique(urls) {
		trimmed := strings.TrimSuffix(u, "/")
		if trimmed != base && strings.HasPrefix(trimmed, base) {
			out = append(out, u)
		}
	}
	return out
}
