package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
)

// MetadataFileName is the per-source summary inside each cache directory.
const MetadataFileName = "metadata.json"

// CacheKey returns the hex SHA-256 digest of url, used as its file name.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Ensure Cache implements docsearch.Cache at compile time.
var _ docsearch.Cache = (*Cache)(nil)

// Cache stores media-stripped HTML snapshots under
// {dir}/{source_id}/{sha256(url)}.html.
type Cache struct {
	dir string

	Fetcher  docsearch.Fetcher
	Stripper docsearch.MediaStripper
	Pacer    docsearch.Pacer
	Logger   *slog.Logger

	// Now returns the cache timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewCache creates a Cache rooted at dir.
func NewCache(dir string, fetcher docsearch.Fetcher, stripper docsearch.MediaStripper, pacer docsearch.Pacer, logger *slog.Logger) *Cache {
	return &Cache{
		dir:      dir,
		Fetcher:  fetcher,
		Stripper: stripper,
		Pacer:    pacer,
		Logger:   logger,
	}
}

// PagePath returns the snapshot location of url within sourceID's directory.
func (c *Cache) PagePath(sourceID, url string) string {
	return filepath.Join(c.dir, sourceID, CacheKey(url)+".html")
}

// CacheSourcePages fetches, strips and stores every document of src.
// Per-document failures are counted and skipped. Cached documents get their
// cache fields set.
func (c *Cache) CacheSourcePages(ctx context.Context, src *docsearch.Source, docs []*docsearch.Document) (*docsearch.CacheResult, error) {
	if err := checkSourceID(src.ID); err != nil {
		return nil, err
	}
	logger := c.logger().With("source", src.ID)

	sourceDir := filepath.Join(c.dir, src.ID)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return nil, err
	}

	result := &docsearch.CacheResult{SourceID: src.ID}
	for _, doc := range docs {
		size, err := c.cachePage(ctx, src.ID, doc)
		if c.Pacer != nil {
			_ = c.Pacer.Wait(ctx)
		}
		if err != nil {
			logger.Warn("failed to cache page", "url", doc.URL, "error", err)
			result.Failed++
			continue
		}
		result.Cached++
		result.SizeBytes += size
	}
	result.SizeMB = docsearch.MB(result.SizeBytes)

	meta := &docsearch.CacheMetadata{
		SourceID:       src.ID,
		SourceName:     src.Name,
		TotalPages:     len(docs),
		CachedPages:    result.Cached,
		FailedPages:    result.Failed,
		TotalSizeBytes: result.SizeBytes,
		TotalSizeMB:    result.SizeMB,
		CachedAt:       c.now(),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(sourceDir, MetadataFileName), data, 0644); err != nil {
		return nil, err
	}

	logger.Info("source cached", "cached", result.Cached, "failed", result.Failed, "size_mb", result.SizeMB)
	return result, nil
}

func (c *Cache) cachePage(ctx context.Context, sourceID string, doc *docsearch.Document) (int64, error) {
	html, err := c.Fetcher.Fetch(ctx, doc.URL)
	if err != nil {
		return 0, err
	}
	if c.Stripper != nil {
		if html, err = c.Stripper.StripMedia(html); err != nil {
			return 0, err
		}
	}

	path := c.PagePath(sourceID, doc.URL)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return 0, err
	}

	doc.CachePath = path
	doc.CacheHash = CacheKey(doc.URL)
	doc.CachedAt = c.now()
	doc.IsCached = true
	return int64(len(html)), nil
}

// Status returns the metadata of every cached source, ordered by source ID.
// Directories without readable metadata are skipped.
func (c *Cache) Status(ctx context.Context) ([]*docsearch.CacheMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []*docsearch.CacheMetadata{}, nil
	} else if err != nil {
		return nil, err
	}

	out := []*docsearch.CacheMetadata{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, entry.Name(), MetadataFileName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var meta docsearch.CacheMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			c.logger().Warn("unreadable cache metadata", "path", path, "error", err)
			continue
		}
		out = append(out, &meta)
	}
	return out, nil
}

// Read returns the cached snapshot of url. Returns ENOTFOUND if it was
// never cached.
func (c *Cache) Read(ctx context.Context, sourceID, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkSourceID(sourceID); err != nil {
		return "", err
	}

	data, err := os.ReadFile(c.PagePath(sourceID, url))
	if errors.Is(err, os.ErrNotExist) {
		return "", docsearch.Errorf(docsearch.ENOTFOUND, "page not cached: %s", url)
	} else if err != nil {
		return "", err
	}
	return string(data), nil
}

// checkSourceID rejects IDs that would escape the cache directory.
func checkSourceID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return docsearch.Errorf(docsearch.EINVALID, "invalid source id %q", id)
	}
	return nil
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
