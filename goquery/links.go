package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
)

// Ensure LinkHarvester implements docsearch.LinkHarvester.
var _ docsearch.LinkHarvester = (*LinkHarvester)(nil)

// LinkHarvester collects in-scope anchors from a page.
type LinkHarvester struct{}

// NewLinkHarvester creates a new LinkHarvester.
func NewLinkHarvester() *LinkHarvester {
	return &LinkHarvester{}
}

// HarvestLinks returns the anchors of html that live under baseURL, resolved
// to absolute URLs without fragments, in document order. The base page
// itself is never returned. A limit of zero or less means no limit.
func (h *LinkHarvester) HarvestLinks(html string, baseURL string, limit int) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "failed to parse HTML: %v", err)
	}

	prefix := strings.TrimSuffix(baseURL, "/")
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if limit > 0 && len(links) >= limit {
			return false
		}

		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return true
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return true
		}

		if !InScope(resolved, prefix) || seen[resolved] {
			return true
		}

		seen[resolved] = true
		links = append(links, resolved)
		return true
	})

	return links, nil
}

// InScope reports whether link starts with prefix and is not the prefix
// page itself. Trailing slashes are ignored on both.
func InScope(link, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	trimmed := strings.TrimSuffix(link, "/")
	return strings.HasPrefix(trimmed, prefix) && trimmed != prefix
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed or if the resolved URL
// is self-referential (same as base URL after stripping fragment).
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
