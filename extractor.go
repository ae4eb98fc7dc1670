package docsearch

// ExtractResult holds the text extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title with any trailing site-name suffix removed.
	Title string

	// Text is the visible body text with navigation chrome removed,
	// whitespace collapsed and case folded.
	Text string
}

// Extractor extracts searchable text from HTML pages.
type Extractor interface {
	// Extract processes raw HTML fetched from pageURL. The URL is used for
	// the title fallback when the page carries no heading or title.
	Extract(html string, pageURL string) (*ExtractResult, error)
}

// LinkHarvester collects internal links from an HTML page.
type LinkHarvester interface {
	// HarvestLinks returns absolute, de-duplicated links that share the
	// baseURL prefix, in document order, capped at limit.
	HarvestLinks(html string, baseURL string, limit int) ([]string, error)
}

// MediaStripper removes heavy media from HTML before it is cached.
type MediaStripper interface {
	StripMedia(html string) (string, error)
}
