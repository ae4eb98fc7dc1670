package mock

import "github.com/fwojciec/docsearch"

var _ docsearch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docsearch.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*docsearch.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*docsearch.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ docsearch.LinkHarvester = (*LinkHarvester)(nil)

// LinkHarvester is a mock implementation of docsearch.LinkHarvester.
type LinkHarvester struct {
	HarvestLinksFn func(html string, baseURL string, limit int) ([]string, error)
}

func (h *LinkHarvester) HarvestLinks(html string, baseURL string, limit int) ([]string, error) {
	return h.HarvestLinksFn(html, baseURL, limit)
}

var _ docsearch.MediaStripper = (*MediaStripper)(nil)

// MediaStripper is a mock implementation of docsearch.MediaStripper.
type MediaStripper struct {
	StripMediaFn func(html string) (string, error)
}

func (m *MediaStripper) StripMedia(html string) (string, error) {
	return m.StripMediaFn(html)
}
