package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
)

// Ensure MediaStripper implements docsearch.MediaStripper.
var _ docsearch.MediaStripper = (*MediaStripper)(nil)

// MediaSelector matches elements dropped from cached snapshots.
const MediaSelector = "img, picture, video, audio, source, track, svg, iframe, embed, object"

// LazyLoadAttrs are removed from every remaining element.
var LazyLoadAttrs = []string{"loading", "srcset", "data-src", "data-srcset", "data-lazy", "data-lazy-src"}

// MediaStripper removes images, embedded media and lazy-load hints.
type MediaStripper struct{}

// NewMediaStripper creates a new MediaStripper.
func NewMediaStripper() *MediaStripper {
	return &MediaStripper{}
}

// StripMedia returns html re-serialized without media elements.
func (m *MediaStripper) StripMedia(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find(MediaSelector).Remove()

	attrSelector := make([]string, len(LazyLoadAttrs))
	for i, attr := range LazyLoadAttrs {
		attrSelector[i] = "[" + attr + "]"
	}
	doc.Find(strings.Join(attrSelector, ", ")).Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range LazyLoadAttrs {
			sel.RemoveAttr(attr)
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINTERNAL, "failed to render HTML: %v", err)
	}
	return out, nil
}
