// Package crawl turns configured documentation sources into documents.
//
// Each online source type has its own bounded strategy: GitBook sites are
// discovered through their sitemap with a link-harvesting fallback,
// docusaurus-style sites use an explicit page list and markdown sources
// list raw file URLs. Fetches within one source are sequential and paced.
// The Builder dispatches sources to these crawlers and assembles an Index.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
)

// MinContentLength is the shortest extracted text kept as a GitBook page.
const MinContentLength = 100

// MaxFallbackLinks caps link harvesting when a sitemap is unusable.
const MaxFallbackLinks = 50

// IndexPageName is the page name of a URL with an empty path.
const IndexPageName = "index"

var separatorReplacer = strings.NewReplacer("-", " ", "_", " ")

// PageNameFromURL returns the last non-empty path segment of rawURL with
// dashes and underscores turned into spaces, or IndexPageName.
func PageNameFromURL(rawURL string) string {
	seg := lastSegment(rawURL)
	if seg == "" {
		return IndexPageName
	}
	return separatorReplacer.Replace(seg)
}

func lastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return ""
	}
	seg, err := url.PathUnescape(path.Base(p))
	if err != nil {
		return path.Base(p)
	}
	return seg
}

// newRemoteDocument builds a remote document from extracted content.
func newRemoteDocument(src *docsearch.Source, pageURL, title, pageName, content string, now time.Time) *docsearch.Document {
	return &docsearch.Document{
		SourceID:   src.ID,
		SourceName: src.Name,
		URL:        pageURL,
		Title:      title,
		PageName:   pageName,
		Content:    docsearch.TruncateContent(content),
		IndexedAt:  now,
	}
}

// pace waits between fetches. A canceled context ends the wait early; the
// following fetch then fails on its own.
func pace(ctx context.Context, p docsearch.Pacer) {
	if p == nil {
		return
	}
	_ = p.Wait(ctx)
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
