package fs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LocalIndexer implements docsearch.LocalIndexer at compile time.
var _ docsearch.LocalIndexer = (*LocalIndexer)(nil)

// LocalIndexer indexes local directory trees of markdown and text files.
type LocalIndexer struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// NewLocalIndexer creates a LocalIndexer.
func NewLocalIndexer(logger *slog.Logger) *LocalIndexer {
	return &LocalIndexer{Logger: logger}
}

// IndexSource walks root and returns one document per matching file, in
// sorted path order. Documents in previous are reused when the file's
// modification time is unchanged. A missing root yields no documents.
func (l *LocalIndexer) IndexSource(ctx context.Context, src *docsearch.Source, root string, previous []*docsearch.Document) ([]*docsearch.Document, error) {
	logger := l.logger().With("source", src.ID)

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		logger.Warn("local source directory not found, create it or fix its path in the source configuration", "path", root)
		return nil, nil
	}

	prior := make(map[string]*docsearch.Document, len(previous))
	for _, doc := range previous {
		prior[doc.FilePath] = doc
	}

	files := FindFiles(root, src.Extensions(), logger)

	var docs []*docsearch.Document
	var reused int
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			logger.Error("failed to stat file", "path", path, "error", err)
			continue
		}
		if prev, ok := prior[path]; ok && prev.FileModified.Equal(info.ModTime()) {
			docs = append(docs, prev)
			reused++
			continue
		}

		doc, err := l.readDocument(src, root, path, info.ModTime())
		if err != nil {
			logger.Error("failed to read file", "path", path, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	logger.Info("local source indexed", "files", len(files), "documents", len(docs), "unchanged", reused)
	return docs, nil
}

// IndexFile reads a single file of src. root is the source's resolved
// directory and determines the page name.
func (l *LocalIndexer) IndexFile(ctx context.Context, src *docsearch.Source, root string, path string) (*docsearch.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, docsearch.Errorf(docsearch.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, docsearch.Errorf(docsearch.EINVALID, "not a file: %s", path)
	}
	return l.readDocument(src, root, path, info.ModTime())
}

func (l *LocalIndexer) readDocument(src *docsearch.Source, root, path string, modified time.Time) (*docsearch.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := string(data)

	title := docsearch.MarkdownTitle(content)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	return &docsearch.Document{
		SourceID:     src.ID,
		SourceName:   src.Name,
		URL:          FileURL(path),
		Title:        title,
		PageName:     PageName(root, path),
		Content:      strings.ToLower(content),
		IndexedAt:    now,
		IsLocal:      true,
		FilePath:     path,
		FileModified: modified,
	}, nil
}

func (l *LocalIndexer) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

// FileURL returns the file:// URL of path.
func FileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}

// PageName returns path relative to root with forward slashes and without
// its extension.
func PageName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// FindFiles walks root iteratively and returns the sorted paths of regular
// files whose lower-cased extension is in exts. Directories named with one
// of the extensions are skipped. Symlinked directories are followed once
// per resolved target. Unreadable directories are logged and skipped.
func FindFiles(root string, exts []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var files []string
	visited := make(map[string]bool)
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		target, err := filepath.EvalSymlinks(dir)
		if err != nil {
			logger.Error("failed to resolve directory", "path", dir, "error", err)
			continue
		}
		if visited[target] {
			logger.Debug("directory already visited", "path", dir, "target", target)
			continue
		}
		visited[target] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Error("failed to read directory", "path", dir, "error", err)
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			isDir := entry.IsDir()
			isFile := entry.Type().IsRegular()
			if entry.Type()&os.ModeSymlink != 0 {
				info, err := os.Stat(path)
				if err != nil {
					logger.Debug("skipping broken symlink", "path", path)
					continue
				}
				isDir = info.IsDir()
				isFile = info.Mode().IsRegular()
			}

			ext := strings.ToLower(filepath.Ext(entry.Name()))
			switch {
			case isDir && slices.Contains(exts, ext):
				logger.Info("skipping directory named like a document", "path", path)
			case isDir:
				stack = append(stack, path)
			case isFile && slices.Contains(exts, ext):
				files = append(files, path)
			}
		}
	}

	slices.Sort(files)
	return files
}
