package fs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/docsearch"
)

// File names inside the data directory.
const (
	IndexFileName  = "index.json"
	BackupFileName = "index.json.bak"
	MetaFileName   = "index.meta.json"
)

// IndexMeta is the sidecar written next to the index on every save.
type IndexMeta struct {
	SizeBytes  int64     `json:"size_bytes"`
	SizeKB     float64   `json:"size_kb"`
	PagesCount int       `json:"pages_count"`
	LastSaved  time.Time `json:"last_saved"`
}

// Ensure IndexStore implements docsearch.IndexStore at compile time.
var _ docsearch.IndexStore = (*IndexStore)(nil)

// IndexStore persists the index as indented JSON in a data directory.
type IndexStore struct {
	dir string

	// Now returns the save timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewIndexStore creates an IndexStore rooted at dir.
func NewIndexStore(dir string) *IndexStore {
	return &IndexStore{dir: dir}
}

// Path returns the location of the index file.
func (s *IndexStore) Path() string {
	return filepath.Join(s.dir, IndexFileName)
}

func (s *IndexStore) backupPath() string {
	return filepath.Join(s.dir, BackupFileName)
}

func (s *IndexStore) metaPath() string {
	return filepath.Join(s.dir, MetaFileName)
}

// Load reads the persisted index. Returns ENOTFOUND when no index has been
// saved yet and EINVALID when the file cannot be parsed.
func (s *IndexStore) Load(ctx context.Context) (*docsearch.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, docsearch.Errorf(docsearch.ENOTFOUND, "no index at %s", s.Path())
	} else if err != nil {
		return nil, err
	}

	idx := docsearch.NewIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "corrupt index %s: %v", s.Path(), err)
	}
	if idx.Pages == nil {
		idx.Pages = []*docsearch.Document{}
	}
	if idx.Sources == nil {
		idx.Sources = []*docsearch.SourceSummary{}
	}
	return idx, nil
}

// Save copies the current index file to the backup path, ignoring failures,
// then replaces the index file and rewrites the sidecar metadata.
func (s *IndexStore) Save(ctx context.Context, idx *docsearch.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	_ = copyFile(s.Path(), s.backupPath())

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.Path(), data); err != nil {
		return err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	meta := &IndexMeta{
		SizeBytes:  int64(len(data)),
		SizeKB:     math.Round(float64(len(data))/1024*100) / 100,
		PagesCount: len(idx.Pages),
		LastSaved:  now,
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(), metaData, 0644)
}

// Meta reads the sidecar metadata of the last save.
func (s *IndexStore) Meta(ctx context.Context) (*IndexMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.metaPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, docsearch.Errorf(docsearch.ENOTFOUND, "no index metadata at %s", s.metaPath())
	} else if err != nil {
		return nil, err
	}
	var meta IndexMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "corrupt index metadata: %v", err)
	}
	return &meta, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// writeFileAtomic writes data to a temporary sibling of path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
