// Package goldmark renders local markdown files as HTML for preview.
package goldmark

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/docsearch"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Ensure Renderer implements docsearch.Renderer at compile time.
var _ docsearch.Renderer = (*Renderer)(nil)

// Renderer converts GitHub-flavored markdown to an HTML fragment. Raw HTML
// in the input is omitted.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Render converts markdown to HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
