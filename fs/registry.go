// Package fs provides file-based storage for the knowledge base: the source
// configuration, local document trees, the offline page cache and the
// persisted index.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docsearch"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Ensure SourceRegistry implements docsearch.SourceRegistry at compile time.
var _ docsearch.SourceRegistry = (*SourceRegistry)(nil)

// sourceConfig is the on-disk shape of the source configuration.
type sourceConfig struct {
	OnlineSources  []*docsearch.Source `json:"online_sources" yaml:"online_sources"`
	OfflineSources []*docsearch.Source `json:"offline_sources" yaml:"offline_sources"`

	// Sources is the legacy name of OnlineSources.
	Sources []*docsearch.Source `json:"sources" yaml:"sources"`
}

// SourceRegistry loads source descriptors from a JSON or YAML file.
type SourceRegistry struct {
	path string
	root string

	validate *validator.Validate
}

// NewSourceRegistry creates a registry reading path. Relative source paths
// are resolved against the directory containing path.
func NewSourceRegistry(path string) *SourceRegistry {
	root := filepath.Dir(path)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &SourceRegistry{
		path:     path,
		root:     root,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Root returns the directory relative source paths are resolved against.
func (r *SourceRegistry) Root() string {
	return r.root
}

// Load reads, validates and filters the configured sources.
func (r *SourceRegistry) Load(ctx context.Context) (*docsearch.SourceSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, docsearch.Errorf(docsearch.ECONFIG, "source configuration not found: %s", r.path)
	} else if err != nil {
		return nil, docsearch.Errorf(docsearch.ECONFIG, "failed to read source configuration: %v", err)
	}

	cfg, err := r.parse(data)
	if err != nil {
		return nil, docsearch.Errorf(docsearch.ECONFIG, "malformed source configuration %s: %v", r.path, err)
	}

	online := cfg.OnlineSources
	if online == nil {
		online = cfg.Sources
	}
	for _, src := range cfg.OfflineSources {
		if src != nil && src.Type == "" {
			src.Type = docsearch.SourceTypeLocal
		}
	}

	if err := r.check(online, cfg.OfflineSources); err != nil {
		return nil, err
	}

	return &docsearch.SourceSet{
		Online:  enabled(online),
		Offline: enabled(cfg.OfflineSources),
	}, nil
}

func (r *SourceRegistry) parse(data []byte) (*sourceConfig, error) {
	var cfg sourceConfig
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// check validates every descriptor, enabled or not, and rejects duplicate IDs.
func (r *SourceRegistry) check(lists ...[]*docsearch.Source) error {
	seen := make(map[string]bool)
	for _, list := range lists {
		for i, src := range list {
			if src == nil {
				return docsearch.Errorf(docsearch.ECONFIG, "source #%d is empty", i+1)
			}
			if err := r.validate.Struct(src); err != nil {
				return docsearch.Errorf(docsearch.ECONFIG, "invalid source %q: %s", src.ID, describe(err))
			}
			if seen[src.ID] {
				return docsearch.Errorf(docsearch.ECONFIG, "duplicate source id %q", src.ID)
			}
			seen[src.ID] = true
		}
	}
	return nil
}

// describe renders validation errors as "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Field()+": "+rule)
	}
	return strings.Join(parts, ", ")
}

func enabled(sources []*docsearch.Source) []*docsearch.Source {
	var out []*docsearch.Source
	for _, src := range sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}

// ResolvePath joins paths starting with "./" or "../" to the registry root.
// Anything else is returned unchanged.
func (r *SourceRegistry) ResolvePath(path string) string {
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return filepath.Join(r.root, path)
	}
	return path
}
