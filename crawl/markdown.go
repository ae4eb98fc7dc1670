package crawl

import (
	"context"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/bloom"
)

var _ docsearch.SourceCrawler = (*MarkdownCrawler)(nil)

var (
	fencedCodeRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`[^`\n]*`")
	punctuationRe = regexp.MustCompile(`[#*_~>|\[\]()!]`)
)

// MarkdownCrawler fetches raw markdown files listed by URL.
type MarkdownCrawler struct {
	// Fetcher should request raw text rather than HTML.
	Fetcher docsearch.Fetcher
	Pacer   docsearch.Pacer
	Logger  *slog.Logger
	Now     func() time.Time
}

// Crawl fetches every URL of src as raw markdown.
func (c *MarkdownCrawler) Crawl(ctx context.Context, src *docsearch.Source) ([]*docsearch.Document, error) {
	logger := loggerOrDiscard(c.Logger).With("source", src.ID)

	urls := bloom.Unique(src.URLs)
	if len(urls) == 0 {
		logger.Warn("no URLs listed")
		return nil, nil
	}

	var docs []*docsearch.Document
	for _, u := range urls {
		body, err := c.Fetcher.Fetch(ctx, u)
		pace(ctx, c.Pacer)
		if err != nil {
			logger.Warn("fetch failed", "url", u, "error", err)
			continue
		}

		name := FileTitleFromURL(u)
		title := docsearch.MarkdownTitle(body)
		if title == "" {
			title = name
		}
		docs = append(docs, newRemoteDocument(src, u, title, name, NormalizeMarkdown(body), nowOrDefault(c.Now)))
	}

	logger.Info("source crawled", "pages", len(docs), "listed", len(urls))
	return docs, nil
}

// FileTitleFromURL returns the last path segment of rawURL with its
// extension stripped and separators turned into spaces.
func FileTitleFromURL(rawURL string) string {
	seg := lastSegment(rawURL)
	seg = strings.TrimSuffix(seg, path.Ext(seg))
	return separatorReplacer.Replace(seg)
}

// NormalizeMarkdown reduces markdown to searchable text: code is dropped,
// markup punctuation stripped, whitespace collapsed and case folded.
func NormalizeMarkdown(md string) string {
	s := fencedCodeRe.ReplaceAllString(md, " ")
	s = inlineCodeRe.ReplaceAllString(s, " ")
	s = punctuationRe.ReplaceAllString(s, "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
