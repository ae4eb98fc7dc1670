package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/docsearch"
	main "github.com/fwojciec/docsearch/cmd/docsearch"
	"github.com/fwojciec/docsearch/fs"
	"github.com/fwojciec/docsearch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(svc docsearch.IndexService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  slog.New(slog.DiscardHandler),
		Service: svc,
	}, stdout, stderr
}

func TestBuildCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints per-source counts", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(&mock.IndexService{
			BuildIndexFn: func(_ context.Context) (*docsearch.IndexInfo, error) {
				return &docsearch.IndexInfo{
					TotalPages: 12,
					Sources: []*docsearch.SourceSummary{
						{ID: "owasp", Type: docsearch.SourceTypeGitBook, PageCount: 10},
						{ID: "notes", Type: docsearch.SourceTypeLocal, PageCount: 2, IsLocal: true},
					},
				}, nil
			},
		})

		err := (&main.BuildCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Indexed 12 pages from 2 sources.")
		assert.Contains(t, stdout.String(), "owasp")
		assert.Contains(t, stdout.String(), "local")
	})

	t.Run("reports busy state", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.IndexService{
			BuildIndexFn: func(_ context.Context) (*docsearch.IndexInfo, error) {
				return nil, docsearch.Errorf(docsearch.EBUSY, "another index operation is in progress")
			},
		})

		err := (&main.BuildCmd{}).Run(deps)

		assert.Equal(t, docsearch.EBUSY, docsearch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "another index operation is in progress")
	})
}

func TestSearchCmd_Run_NoResults(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(&mock.IndexService{
		SearchFn: func(_ context.Context, _ string, opts docsearch.SearchOptions) ([]*docsearch.SearchResult, error) {
			assert.True(t, opts.Fuzzy)
			return nil, nil
		},
	})

	err := (&main.SearchCmd{Query: []string{"kerberos"}, Limit: 10}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), `No results for "kerberos".`)
}

func TestSearchCmd_Run_EmptyQuery(t *testing.T) {
	t.Parallel()

	deps, _, _ := newDeps(&mock.IndexService{})

	err := (&main.SearchCmd{Query: []string{" "}}).Run(deps)

	assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
}

func TestInfoCmd_Run(t *testing.T) {
	t.Parallel()

	store := fs.NewIndexStore(t.TempDir())
	require.NoError(t, store.Save(context.Background(), docsearch.NewIndex()))

	deps, stdout, _ := newDeps(&mock.IndexService{
		IndexInfoFn: func(_ context.Context) *docsearch.IndexInfo {
			return &docsearch.IndexInfo{
				TotalPages:  3,
				LastUpdated: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
				Sources:     []*docsearch.SourceSummary{{ID: "owasp", Type: docsearch.SourceTypeGitBook, PageCount: 3}},
			}
		},
	})
	deps.Store = store

	err := (&main.InfoCmd{}).Run(deps)

	require.NoError(t, err)
	out := stdout.String()
	assert.Contains(t, out, "Pages:        3")
	assert.Contains(t, out, store.Path())
	assert.Contains(t, out, " B)")
	assert.Contains(t, out, "Sources (1):")
}

func TestInfoCmd_Run_EmptyIndex(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(&mock.IndexService{
		IndexInfoFn: func(_ context.Context) *docsearch.IndexInfo {
			return &docsearch.IndexInfo{Sources: []*docsearch.SourceSummary{}}
		},
	})

	err := (&main.InfoCmd{}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Last updated: never")
	assert.Contains(t, stdout.String(), "docsearch build")
}

func TestUpdateCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("updates owned file", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(&mock.IndexService{
			UpdateLocalFileFn: func(_ context.Context, path string) (bool, error) {
				assert.Equal(t, "notes/a.md", path)
				return true, nil
			},
			IndexInfoFn: func(_ context.Context) *docsearch.IndexInfo {
				return &docsearch.IndexInfo{TotalPages: 4}
			},
		})

		err := (&main.UpdateCmd{Path: "notes/a.md"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Updated notes/a.md (4 pages indexed).")
	})

	t.Run("fails when no local source owns the file", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.IndexService{
			UpdateLocalFileFn: func(_ context.Context, _ string) (bool, error) {
				return false, nil
			},
		})

		err := (&main.UpdateCmd{Path: "/elsewhere/a.md"}).Run(deps)

		assert.Equal(t, docsearch.ENOTFOUND, docsearch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "not inside any enabled local source")
	})
}

func TestRemoveCmd_Run_NotIndexed(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(&mock.IndexService{
		RemoveLocalFileFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	})

	err := (&main.RemoveCmd{Path: "notes/gone.md"}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "nothing to remove")
}

func TestCacheCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints results", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(&mock.IndexService{
			CacheSourcesFn: func(_ context.Context, ids []string) (*docsearch.CacheBatch, error) {
				assert.Equal(t, []string{"owasp"}, ids)
				return &docsearch.CacheBatch{Results: []*docsearch.CacheResult{
					{SourceID: "owasp", Cached: 9, Failed: 1, SizeBytes: 2048},
				}}, nil
			},
		})

		err := (&main.CacheCmd{SourceIDs: []string{"owasp"}}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "owasp: 9 cached, 1 failed, 2.0 KB")
	})

	t.Run("rejected batch fails", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.IndexService{
			CacheSourcesFn: func(_ context.Context, _ []string) (*docsearch.CacheBatch, error) {
				return &docsearch.CacheBatch{Rejected: true, Message: "Max 5 sources can be cached at once, got 6."}, nil
			},
		})

		err := (&main.CacheCmd{SourceIDs: []string{"a", "b", "c", "d", "e", "f"}}).Run(deps)

		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "Max 5 sources")
	})
}

func TestCacheStatusCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(&mock.IndexService{
		CacheStatusFn: func(_ context.Context) ([]*docsearch.CacheMetadata, error) {
			return []*docsearch.CacheMetadata{
				{SourceID: "owasp", CachedPages: 9, TotalPages: 10, TotalSizeBytes: 3 * 1024 * 1024},
			}, nil
		},
	})

	err := (&main.CacheStatusCmd{}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "9/10 pages")
	assert.Contains(t, stdout.String(), "3.0 MB")
}

func TestCachedCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, stderr := newDeps(&mock.IndexService{
		CachedPageFn: func(_ context.Context, sourceID, url string) (string, error) {
			if url == "https://book.example.com/a" {
				return "# A", nil
			}
			return "", docsearch.Errorf(docsearch.ENOTFOUND, "page not cached: %s", url)
		},
	})

	require.NoError(t, (&main.CachedCmd{SourceID: "owasp", URL: "https://book.example.com/a"}).Run(deps))
	assert.Equal(t, "# A\n", stdout.String())

	err := (&main.CachedCmd{SourceID: "owasp", URL: "https://book.example.com/b"}).Run(deps)
	assert.Equal(t, docsearch.ENOTFOUND, docsearch.ErrorCode(err))
	assert.Contains(t, stderr.String(), "page not cached")
}

func TestPreviewCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(&mock.IndexService{
		PreviewLocalFileFn: func(_ context.Context, _ string) (string, error) {
			return "<h1>A</h1>", nil
		},
	})

	err := (&main.PreviewCmd{Path: "notes/a.md"}).Run(deps)

	require.NoError(t, err)
	assert.Equal(t, "<h1>A</h1>\n", stdout.String())
}

func TestServeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid schedule before serving", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.IndexService{})

		err := (&main.ServeCmd{Addr: "127.0.0.1:0", Schedule: "every tuesday"}).Run(deps)

		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "invalid schedule")
	})

	t.Run("watch requires a registry", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(&mock.IndexService{})

		err := (&main.ServeCmd{Addr: "127.0.0.1:0", Watch: true}).Run(deps)

		assert.Equal(t, docsearch.ECONFIG, docsearch.ErrorCode(err))
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		deps, _, _ := newDeps(&mock.IndexService{})
		deps.Registry = &mock.SourceRegistry{
			LoadFn: func(_ context.Context) (*docsearch.SourceSet, error) {
				return &docsearch.SourceSet{Offline: []*docsearch.Source{
					{ID: "notes", Type: docsearch.SourceTypeLocal, Enabled: true, Path: root},
				}}, nil
			},
			ResolvePathFn: func(path string) string { return path },
		}
		ctx, cancel := context.WithCancel(context.Background())
		deps.Ctx = ctx

		done := make(chan error, 1)
		go func() {
			done <- (&main.ServeCmd{Addr: "127.0.0.1:0", Watch: true, Schedule: "@every 1h"}).Run(deps)
		}()
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not stop after cancel")
		}
	})
}
