package fsnotify_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/fsnotify"
	"github.com/fwojciec/docsearch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the calls the watcher makes.
type recorder struct {
	mu      sync.Mutex
	updated []string
	removed []string
	busy    int
}

func (r *recorder) service() *mock.IndexService {
	return &mock.IndexService{
		UpdateLocalFileFn: func(_ context.Context, path string) (bool, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.busy > 0 {
				r.busy--
				return false, docsearch.Errorf(docsearch.EBUSY, "busy")
			}
			r.updated = append(r.updated, path)
			return true, nil
		},
		RemoveLocalFileFn: func(_ context.Context, path string) (bool, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.removed = append(r.removed, path)
			return true, nil
		},
	}
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.updated...), append([]string(nil), r.removed...)
}

func startWatcher(t *testing.T, rec *recorder, root string) {
	t.Helper()

	w, err := fsnotify.NewWatcher(rec.service(), fsnotify.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Add(root, []string{".md"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	t.Run("updates written files and removes deleted ones", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		existing := filepath.Join(root, "old.md")
		require.NoError(t, os.WriteFile(existing, []byte("# Old"), 0644))
		rec := &recorder{}
		startWatcher(t, rec, root)

		created := filepath.Join(root, "new.md")
		require.NoError(t, os.WriteFile(created, []byte("# New"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("x"), 0644))
		require.NoError(t, os.Remove(existing))

		assert.Eventually(t, func() bool {
			updated, removed := rec.snapshot()
			return slices.Contains(updated, created) && slices.Contains(removed, existing)
		}, 5*time.Second, 10*time.Millisecond)

		updated, removed := rec.snapshot()
		assert.NotContains(t, updated, filepath.Join(root, "ignored.txt"))
		assert.NotContains(t, updated, existing)
		assert.Equal(t, []string{existing}, removed)
	})

	t.Run("watches directories created later", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		rec := &recorder{}
		startWatcher(t, rec, root)

		sub := filepath.Join(root, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))
		path := filepath.Join(sub, "late.md")
		assert.Eventually(t, func() bool {
			_ = os.WriteFile(path, []byte("# Late"), 0644)
			updated, _ := rec.snapshot()
			return slices.Contains(updated, path)
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("retries changes rejected as busy", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		rec := &recorder{busy: 2}
		startWatcher(t, rec, root)

		path := filepath.Join(root, "retry.md")
		require.NoError(t, os.WriteFile(path, []byte("# Retry"), 0644))

		assert.Eventually(t, func() bool {
			updated, _ := rec.snapshot()
			return slices.Contains(updated, path)
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("missing root is not an error", func(t *testing.T) {
		t.Parallel()

		w, err := fsnotify.NewWatcher(&mock.IndexService{})
		require.NoError(t, err)

		assert.NoError(t, w.Add(filepath.Join(t.TempDir(), "absent"), []string{".md"}))
	})
}
