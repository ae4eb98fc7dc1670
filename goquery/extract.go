package goquery

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
)

// Ensure Extractor implements docsearch.Extractor.
var _ docsearch.Extractor = (*Extractor)(nil)

// ChromeSelector matches page chrome that never carries documentation text.
const ChromeSelector = "script, style, noscript, nav, header, footer, .sidebar, .menu"

// UntitledTitle is used when a page yields no usable title.
const UntitledTitle = "Untitled"

// Extractor pulls a title and normalized body text out of HTML pages.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses html and returns its title and searchable text. The text
// is lower-cased, whitespace-collapsed and capped at
// docsearch.MaxRemoteContentLength characters.
func (e *Extractor) Extract(html string, pageURL string) (*docsearch.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "failed to parse HTML: %v", err)
	}

	// Title first: headers are stripped below and may hold the h1.
	title := Title(doc, pageURL)

	doc.Find(ChromeSelector).Remove()
	text := strings.ToLower(CollapseWhitespace(doc.Find("body").Text()))

	return &docsearch.ExtractResult{
		Title: title,
		Text:  docsearch.TruncateContent(text),
	}, nil
}

// Title picks the first h1, then <title>, then the last URL path segment,
// and strips any trailing site-name suffix from the result.
func Title(doc *goquery.Document, pageURL string) string {
	title := CollapseWhitespace(doc.Find("h1").First().Text())
	if title == "" {
		title = CollapseWhitespace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = TitleFromURL(pageURL)
	}
	return CleanTitle(title)
}

// CleanTitle strips site-name suffixes. Everything from the first "|" and
// from the last " - " is dropped. An empty result becomes UntitledTitle.
func CleanTitle(title string) string {
	if i := strings.Index(title, "|"); i >= 0 {
		title = title[:i]
	}
	if i := strings.LastIndex(title, " - "); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return UntitledTitle
	}
	return title
}

// TitleFromURL turns the last non-empty path segment of rawURL into words.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimSuffix(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(seg)
}

// CollapseWhitespace trims s and replaces every run of whitespace with a
// single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
