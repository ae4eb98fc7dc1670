package docsearch

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}

// Renderer renders Markdown to HTML for human preview.
type Renderer interface {
	Render(markdown string) (string, error)
}
