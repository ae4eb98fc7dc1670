package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/crawl"
	"github.com/fwojciec/docsearch/fs"
	"github.com/fwojciec/docsearch/goldmark"
	"github.com/fwojciec/docsearch/goquery"
	"github.com/fwojciec/docsearch/htmltomarkdown"
	dshttp "github.com/fwojciec/docsearch/http"
	"github.com/fwojciec/docsearch/index"
	"github.com/fwojciec/docsearch/rod"
	"github.com/fwojciec/docsearch/search"
	dsslog "github.com/fwojciec/docsearch/slog"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// EnvFile is loaded before flags are parsed. Variables already set in
	// the environment win. Missing files are ignored.
	EnvFile string

	// Services for end-to-end testing. When Service is set no real
	// services are wired.
	Service  docsearch.IndexService
	Registry docsearch.SourceRegistry

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFile: ".env",
	}
}

// Close releases every resource opened while wiring.
func (m *Main) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if m.EnvFile != "" {
		_ = godotenv.Load(m.EnvFile)
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsearch"),
		kong.Description("Index and search documentation from websites and local folders"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsearch --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)

	if m.Service != nil {
		deps.Service = m.Service
		deps.Registry = m.Registry
		return kongCtx.Run(deps)
	}

	defer m.Close()
	if err := m.wire(ctx, cli, cmd, deps); err != nil {
		return err
	}
	return kongCtx.Run(deps)
}

// wire builds the real service graph into deps.
func (m *Main) wire(ctx context.Context, cli *CLI, cmd string, deps *Dependencies) error {
	logger := deps.Logger

	var limiter docsearch.DomainLimiter
	if cli.MaxRPS > 0 {
		limiter = dshttp.NewDomainLimiter(cli.MaxRPS)
	}
	htmlFetcher := m.track(dsslog.NewLoggingFetcher(
		dshttp.NewFetcher(dshttp.WithLimiter(limiter)), logger))
	rawFetcher := m.track(dsslog.NewLoggingFetcher(
		dshttp.NewFetcher(dshttp.WithHeaders(dshttp.RawTextHeaders), dshttp.WithLimiter(limiter)), logger))

	// Only commands that crawl need a browser.
	gitbookFetcher := htmlFetcher
	if cli.Browser && (cmd == "build" || cmd == "cache" || cmd == "serve") {
		browser, err := rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or drop --browser")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		gitbookFetcher = m.track(dsslog.NewLoggingFetcher(browser, logger))
	}

	pacer := crawl.NewJitterPacer(cli.Delay)
	extractor := goquery.NewExtractor()

	registry := dsslog.NewLoggingRegistry(fs.NewSourceRegistry(cli.Sources), logger)

	crawlers := map[docsearch.SourceType]docsearch.SourceCrawler{
		docsearch.SourceTypeGitBook: dsslog.NewLoggingSourceCrawler(&crawl.GitBookCrawler{
			Sitemaps:  dsslog.NewLoggingSitemapService(dshttp.NewSitemapService(nil), logger),
			Fetcher:   gitbookFetcher,
			Extractor: extractor,
			Links:     goquery.NewLinkHarvester(),
			Pacer:     pacer,
			Logger:    logger,
		}, logger),
		docsearch.SourceTypeDocusaurus: dsslog.NewLoggingSourceCrawler(&crawl.PageListCrawler{
			Fetcher:   htmlFetcher,
			Extractor: extractor,
			Pacer:     pacer,
			Logger:    logger,
		}, logger),
		docsearch.SourceTypeMarkdown: dsslog.NewLoggingSourceCrawler(&crawl.MarkdownCrawler{
			Fetcher: rawFetcher,
			Pacer:   pacer,
			Logger:  logger,
		}, logger),
	}

	local := fs.NewLocalIndexer(logger)
	store := fs.NewIndexStore(cli.Data)
	cache := fs.NewCache(cli.Cache, htmlFetcher, goquery.NewMediaStripper(), pacer, logger)

	svc := &index.Service{
		Registry: registry,
		Store:    store,
		Builder: &crawl.Builder{
			Crawlers: crawlers,
			Local:    local,
			Registry: registry,
			Logger:   logger,
		},
		Local:     local,
		Crawlers:  crawlers,
		Cache:     dsslog.NewLoggingCache(cache, logger),
		Converter: htmltomarkdown.NewConverter(),
		Renderer:  goldmark.NewRenderer(),
		Engine:    search.NewEngine(),
		Logger:    logger,
	}
	if err := svc.Initialize(ctx); err != nil {
		return err
	}

	deps.Service = svc
	deps.Registry = registry
	deps.Store = store
	return nil
}

func (m *Main) track(f docsearch.Fetcher) docsearch.Fetcher {
	m.closers = append(m.closers, f)
	return f
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
