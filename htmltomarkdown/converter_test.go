package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{
			name:     "headings",
			html:     `<h1>SQL Injection</h1><h2>Detection</h2>`,
			contains: []string{"# SQL Injection", "## Detection"},
		},
		{
			name:     "links",
			html:     `<p>See <a href="https://owasp.example.com">OWASP</a>.</p>`,
			contains: []string{"[OWASP](https://owasp.example.com)"},
		},
		{
			name:     "lists",
			html:     `<ul><li>Union based</li><li>Blind</li></ul>`,
			contains: []string{"- Union based", "- Blind"},
		},
		{
			name:     "code blocks keep the language hint",
			html:     "<pre><code class=\"language-sql\">SELECT 1;</code></pre>",
			contains: []string{"```sql", "SELECT 1;"},
		},
		{
			name:     "inline code and emphasis",
			html:     `<p><strong>Never</strong> trust <code>user_input</code>.</p>`,
			contains: []string{"**Never**", "`user_input`"},
		},
		{
			name: "tables",
			html: `<table><thead><tr><th>Payload</th><th>Effect</th></tr></thead>
<tbody><tr><td>' OR 1=1</td><td>bypass</td></tr></tbody></table>`,
			contains: []string{"Payload", "Effect", "bypass", "|", "---"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md, err := htmltomarkdown.NewConverter().Convert(tt.html)

			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, md, want)
			}
		})
	}
}

func TestConverter_Convert_DropsChrome(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<header><a href="/">Home</a></header>
<nav><ul><li>Sidebar entry</li></ul></nav>
<main><h1>Cheat Sheet</h1><p>Body text.</p></main>
<footer>Copyright</footer>
</body></html>`

	md, err := htmltomarkdown.NewConverter().Convert(html)

	require.NoError(t, err)
	assert.Contains(t, md, "# Cheat Sheet")
	assert.Contains(t, md, "Body text.")
	assert.NotContains(t, md, "Sidebar entry")
	assert.NotContains(t, md, "Copyright")
	assert.NotContains(t, md, "Home")
}

func TestConverter_Convert_Empty(t *testing.T) {
	t.Parallel()

	_, err := htmltomarkdown.NewConverter().Convert("  \n ")

	require.Error(t, err)
	assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
}
