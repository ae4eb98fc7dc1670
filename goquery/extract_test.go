package goquery_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("removes chrome and normalizes body text", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Ignored | Site</title><style>.x{}</style></head>
<body>
<header><a href="/">Home</a></header>
<nav>Table of contents</nav>
<div class="sidebar">Sidebar links</div>
<main>
	<h1>SQL Injection</h1>
	<p>Untrusted   INPUT is
	concatenated into queries.</p>
	<script>var leaked = 1;</script>
</main>
<footer>Copyright</footer>
</body>
</html>`

		result, err := goquery.NewExtractor().Extract(html, "https://example.com/docs/sqli")

		require.NoError(t, err)
		assert.Equal(t, "SQL Injection", result.Title)
		assert.Equal(t, "sql injection untrusted input is concatenated into queries.", result.Text)
	})

	t.Run("falls back to title element and strips site suffix", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Getting Started | Acme Docs</title></head><body><p>x</p></body></html>`

		result, err := goquery.NewExtractor().Extract(html, "https://example.com/start")

		require.NoError(t, err)
		assert.Equal(t, "Getting Started", result.Title)
	})

	t.Run("falls back to last URL segment", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>text</p></body></html>`

		result, err := goquery.NewExtractor().Extract(html, "https://example.com/docs/cross-site_scripting/")

		require.NoError(t, err)
		assert.Equal(t, "cross site scripting", result.Title)
	})

	t.Run("uses untitled when nothing yields a title", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewExtractor().Extract(`<html><body></body></html>`, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, goquery.UntitledTitle, result.Title)
		assert.Empty(t, result.Text)
	})

	t.Run("caps text length", func(t *testing.T) {
		t.Parallel()

		html := "<html><body><p>" + strings.Repeat("word ", 5000) + "</p></body></html>"

		result, err := goquery.NewExtractor().Extract(html, "https://example.com/long")

		require.NoError(t, err)
		assert.Len(t, []rune(result.Text), docsearch.MaxRemoteContentLength)
	})
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Intro | Site", "Intro"},
		{"SQL Injection - OWASP", "SQL Injection"},
		{"Pre-flight - Checks - Vendor", "Pre-flight - Checks"},
		{"Plain", "Plain"},
		{" | Site", "Untitled"},
		{"", "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, goquery.CleanTitle(tt.in))
		})
	}
}

func TestTitleFromURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "access control", goquery.TitleFromURL("https://example.com/docs/access-control"))
	assert.Equal(t, "", goquery.TitleFromURL("https://example.com/"))
	assert.Equal(t, "", goquery.TitleFromURL("https://example.com"))
}
