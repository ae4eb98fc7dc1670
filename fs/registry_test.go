package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSourceRegistry_Load(t *testing.T) {
	t.Parallel()

	t.Run("partitions enabled JSON sources", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "sources.json", `{
  "online_sources": [
    {"id": "owasp", "name": "OWASP", "type": "gitbook", "enabled": true, "index_url": "https://book.example.com"},
    {"id": "off", "name": "Disabled", "type": "gitbook", "enabled": false, "index_url": "https://off.example.com"},
    {"id": "d", "name": "Docs", "type": "docusaurus", "enabled": true, "base_url": "https://d.example.com", "pages": ["intro"]}
  ],
  "offline_sources": [
    {"id": "notes", "name": "Notes", "enabled": true, "path": "./notes", "file_extensions": [".md", ".txt"]}
  ]
}`)

		set, err := fs.NewSourceRegistry(path).Load(context.Background())

		require.NoError(t, err)
		require.Len(t, set.Online, 2)
		assert.Equal(t, "owasp", set.Online[0].ID)
		assert.Equal(t, "d", set.Online[1].ID)
		require.Len(t, set.Offline, 1)
		assert.Equal(t, docsearch.SourceTypeLocal, set.Offline[0].Type)
		assert.Equal(t, []string{".md", ".txt"}, set.Offline[0].Extensions())
	})

	t.Run("accepts the legacy sources key", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "sources.json", `{"sources": [{"id": "m", "name": "MD", "type": "markdown", "enabled": true, "urls": ["https://raw.example.com/a.md"]}]}`)

		set, err := fs.NewSourceRegistry(path).Load(context.Background())

		require.NoError(t, err)
		require.Len(t, set.Online, 1)
		assert.Equal(t, docsearch.SourceTypeMarkdown, set.Online[0].Type)
	})

	t.Run("reads YAML by extension", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "sources.yaml", `
online_sources:
  - id: owasp
    name: OWASP
    type: gitbook
    enabled: true
    cache_offline: true
    index_url: https://book.example.com
offline_sources:
  - id: notes
    name: Notes
    type: local
    enabled: true
    path: /srv/notes
`)

		set, err := fs.NewSourceRegistry(path).Load(context.Background())

		require.NoError(t, err)
		require.Len(t, set.Online, 1)
		assert.True(t, set.Online[0].CacheOffline)
		require.Len(t, set.Offline, 1)
		assert.Equal(t, "/srv/notes", set.Offline[0].Path)
	})

	t.Run("unknown types pass validation", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "sources.json", `{"online_sources": [{"id": "c", "name": "Wiki", "type": "confluence", "enabled": true}]}`)

		set, err := fs.NewSourceRegistry(path).Load(context.Background())

		require.NoError(t, err)
		require.Len(t, set.Online, 1)
	})

	errorCases := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed JSON", "sources.json", `{"online_sources": [`},
		{"malformed YAML", "sources.yml", "online_sources: [unclosed"},
		{"missing name", "sources.json", `{"online_sources": [{"id": "a", "type": "gitbook", "enabled": true, "index_url": "https://a.example.com"}]}`},
		{"gitbook without index url", "sources.json", `{"online_sources": [{"id": "a", "name": "A", "type": "gitbook", "enabled": true}]}`},
		{"invalid markdown url", "sources.json", `{"online_sources": [{"id": "a", "name": "A", "type": "markdown", "enabled": true, "urls": ["not a url"]}]}`},
		{"local without path", "sources.json", `{"offline_sources": [{"id": "a", "name": "A", "enabled": true}]}`},
		{"duplicate ids across lists", "sources.json", `{
  "online_sources": [{"id": "a", "name": "A", "type": "gitbook", "enabled": true, "index_url": "https://a.example.com"}],
  "offline_sources": [{"id": "a", "name": "A", "enabled": false, "path": "./a"}]
}`},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tt.file, tt.content)

			_, err := fs.NewSourceRegistry(path).Load(context.Background())

			require.Error(t, err)
			assert.Equal(t, docsearch.ECONFIG, docsearch.ErrorCode(err))
		})
	}

	t.Run("missing file is a config error", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewSourceRegistry(filepath.Join(t.TempDir(), "nope.json")).Load(context.Background())

		assert.Equal(t, docsearch.ECONFIG, docsearch.ErrorCode(err))
	})
}

func TestSourceRegistry_ResolvePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := fs.NewSourceRegistry(filepath.Join(dir, "sources.json"))

	assert.Equal(t, dir, r.Root())
	assert.Equal(t, filepath.Join(dir, "notes"), r.ResolvePath("./notes"))
	assert.Equal(t, filepath.Join(filepath.Dir(dir), "shared"), r.ResolvePath("../shared"))
	assert.Equal(t, "/srv/notes", r.ResolvePath("/srv/notes"))
	assert.Equal(t, "notes", r.ResolvePath("notes"))
}
