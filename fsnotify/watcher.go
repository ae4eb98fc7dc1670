// Package fsnotify keeps local documents in the index current by watching
// offline source directories for changes.
package fsnotify

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fwojciec/docsearch"
)

// DefaultDebounce batches bursts of events for the same file.
const DefaultDebounce = 500 * time.Millisecond

// op is the pending action for one path.
type op int

const (
	opUpdate op = iota
	opRemove
)

// Watcher forwards file changes under the watched roots to
// UpdateLocalFile and RemoveLocalFile. Events are debounced per path;
// changes rejected with EBUSY are retried on the next flush.
type Watcher struct {
	service  docsearch.IndexService
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	exts    map[string]bool
	pending map[string]op
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the flush interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a Watcher driving service.
func NewWatcher(service docsearch.IndexService, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		service:  service,
		watcher:  fw,
		logger:   slog.New(slog.DiscardHandler),
		debounce: DefaultDebounce,
		exts:     make(map[string]bool),
		pending:  make(map[string]op),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches root and every directory below it for files with one of
// exts. A missing root is skipped with a warning.
func (w *Watcher) Add(root string, exts []string) error {
	w.mu.Lock()
	for _, ext := range exts {
		w.exts[strings.ToLower(ext)] = true
	}
	w.mu.Unlock()

	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("watch root not found", "path", root)
		return nil
	}
	return w.addTree(root)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.matches(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// matches reports whether path has a watched extension.
func (w *Watcher) matches(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// Run processes events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}
	if !w.matches(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.pending[path] = opRemove
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.pending[path] = opUpdate
	}
}

// flush applies pending changes in path order.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]op)
	w.mu.Unlock()

	paths := make([]string, 0, len(batch))
	for path := range batch {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		var ok bool
		var err error
		if batch[path] == opRemove {
			ok, err = w.service.RemoveLocalFile(ctx, path)
		} else {
			ok, err = w.service.UpdateLocalFile(ctx, path)
		}

		switch {
		case docsearch.ErrorCode(err) == docsearch.EBUSY:
			w.requeue(path, batch[path])
		case err != nil:
			w.logger.Warn("failed to apply file change", "path", path, "error", err)
		default:
			w.logger.Info("file change applied", "path", path, "removed", batch[path] == opRemove, "indexed", ok)
		}
	}
}

// requeue keeps a busy change pending unless a newer event replaced it.
func (w *Watcher) requeue(path string, o op) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[path]; !ok {
		w.pending[path] = o
	}
}
