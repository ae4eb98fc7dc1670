package crawl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/bloom"
)

var _ docsearch.SourceCrawler = (*PageListCrawler)(nil)

// PageListCrawler crawls sites whose pages are listed explicitly as slugs
// under a base URL, such as docusaurus sites.
type PageListCrawler struct {
	Fetcher   docsearch.Fetcher
	Extractor docsearch.Extractor
	Pacer     docsearch.Pacer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Crawl fetches {base_url}/{slug} for every listed page. Failed pages are
// skipped.
func (c *PageListCrawler) Crawl(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
	logger := loggerOrDiscard(c.Logger).With("source", src.ID)

	if len(src.Pages) == 0 {
		logger.Warn("no pages listed")
		return nil, nil
	}

	base := strings.TrimSuffix(src.BaseURL, "/")
	slugs := bloom.Unique(src.Pages)

	var docs []*docsearch.Document
	for _, slug := range slugs {
		slug = strings.Trim(slug, "/")
		u := base + "/" + slug

		html, err := c.Fetcher.Fetch(ctx, u)
		pace(ctx, c.Pacer)
		if err != nil {
			logger.Warn("fetch failed", "url", u, "error", err)
			continue
		}

		res, err := c.Extractor.Extract(html, u)
		if err != nil {
			logger.Warn("extract failed", "url", u, "error", err)
			continue
		}

		pageName := strings.ReplaceAll(slug, "-", " ")
		docs = append(docs, newRemoteDocument(src, u, res.Title, pageName, res.Text, nowOrDefault(c.Now)))
	}

	logger.Info("source crawled", "pages", len(docs), "listed", len(slugs))
	return docs, nil
}
