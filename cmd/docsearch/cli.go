package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Service  docsearch.IndexService
	Registry docsearch.SourceRegistry
	Store    *fs.IndexStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Sources string        `short:"s" default:"sources.json" env:"DOCSEARCH_SOURCES" help:"Source configuration file (JSON or YAML)"`
	Data    string        `default:"data" env:"DOCSEARCH_DATA" help:"Directory holding the persisted index"`
	Cache   string        `default:"data/cache" env:"DOCSEARCH_CACHE" help:"Directory holding offline page snapshots"`
	Delay   time.Duration `default:"500ms" env:"DOCSEARCH_DELAY" help:"Base delay between page fetches"`
	MaxRPS  float64       `name:"max-rps" default:"4" env:"DOCSEARCH_MAX_RPS" help:"Per-host request ceiling (0 disables)"`
	Browser bool          `env:"DOCSEARCH_BROWSER" help:"Render GitBook pages with headless Chrome"`
	Verbose bool          `short:"v" help:"Enable debug logging"`

	Build       BuildCmd       `cmd:"" help:"Crawl every enabled source and rebuild the index"`
	Search      SearchCmd      `cmd:"" help:"Search the index"`
	Info        InfoCmd        `cmd:"" help:"Show index statistics"`
	Update      UpdateCmd      `cmd:"" help:"Re-index one local file"`
	Remove      RemoveCmd      `cmd:"" help:"Drop one local file from the index"`
	CacheCmd    CacheCmd       `cmd:"" name:"cache" help:"Cache pages of online sources for offline reading"`
	CacheStatus CacheStatusCmd `cmd:"" name:"cache-status" help:"List cached sources"`
	Cached      CachedCmd      `cmd:"" help:"Show a cached page as markdown"`
	Preview     PreviewCmd     `cmd:"" help:"Render an indexed local file as HTML"`
	Serve       ServeCmd       `cmd:"" help:"Serve the REST API"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct{}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   []string `arg:"" help:"Search terms"`
	NoFuzzy bool     `help:"Disable the fuzzy fallback"`
	Limit   int      `short:"n" default:"10" help:"Maximum number of results (0 for all)"`
}

// InfoCmd is the "info" subcommand.
type InfoCmd struct{}

// UpdateCmd is the "update" subcommand.
type UpdateCmd struct {
	Path string `arg:"" help:"Local file path"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	Path string `arg:"" help:"Local file path"`
}

// CacheCmd is the "cache" subcommand.
type CacheCmd struct {
	SourceIDs []string `arg:"" name:"source-id" help:"Sources to cache"`
}

// CacheStatusCmd is the "cache-status" subcommand.
type CacheStatusCmd struct{}

// CachedCmd is the "cached" subcommand.
type CachedCmd struct {
	SourceID string `arg:"" help:"Source ID"`
	URL      string `arg:"" help:"Page URL"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	Path string `arg:"" help:"Local file path"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr     string `default:":8080" env:"DOCSEARCH_ADDR" help:"Listen address"`
	Watch    bool   `help:"Re-index local files when they change"`
	Schedule string `env:"DOCSEARCH_SCHEDULE" help:"Cron expression for periodic rebuilds"`
}
