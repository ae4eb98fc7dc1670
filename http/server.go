package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxSearchResults caps the results returned by the search endpoint.
const MaxSearchResults = 50

// APIVersion is reported by the status endpoint.
const APIVersion = "3.0"

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Server serves the REST API over an IndexService.
type Server struct {
	router     *chi.Mux
	service    docsearch.IndexService
	logger     *slog.Logger
	started    time.Time
	rebuilding atomic.Bool

	// Now returns the current time. Replaceable in tests.
	Now func() time.Time
}

// NewServer creates a new Server. A nil logger discards output.
func NewServer(service docsearch.IndexService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
		Now:     time.Now,
	}
	s.started = s.Now()

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/sources", s.handleSources)
		r.Post("/search", s.handleSearch)
		r.Post("/rebuild-index", s.handleRebuild)

		r.Route("/local", func(r chi.Router) {
			r.Post("/update", s.handleLocalUpdate)
			r.Post("/remove", s.handleLocalRemove)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Post("/", s.handleCache)
			r.Get("/status", s.handleCacheStatus)
			r.Get("/page", s.handleCachedPage)
		})

		r.Get("/preview", s.handlePreview)
	})
}

// Run listens on addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) ready(ctx context.Context) bool {
	return !s.rebuilding.Load() && s.service.IndexInfo(ctx).TotalPages > 0
}

type healthResponse struct {
	Status        string  `json:"status"`
	IndexReady    bool    `json:"index_ready"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		IndexReady:    s.ready(r.Context()),
		UptimeSeconds: s.Now().Sub(s.started).Seconds(),
	})
}

type statusResponse struct {
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	*docsearch.IndexInfo
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:     s.ready(r.Context()),
		Version:   APIVersion,
		IndexInfo: s.service.IndexInfo(r.Context()),
	})
}

type sourcesResponse struct {
	Sources []*docsearch.SourceSummary `json:"sources"`
	Total   int                        `json:"total"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := s.service.IndexInfo(r.Context()).Sources
	if sources == nil {
		sources = []*docsearch.SourceSummary{}
	}
	writeJSON(w, http.StatusOK, sourcesResponse{Sources: sources, Total: len(sources)})
}

type searchRequest struct {
	Query string `json:"query"`
	Fuzzy *bool  `json:"fuzzy"`
}

// searchHit flattens a SearchResult for API clients.
type searchHit struct {
	SourceName     string              `json:"source_name"`
	SourceID       string              `json:"source_id"`
	Title          string              `json:"title"`
	PageName       string              `json:"page_name"`
	URL            string              `json:"url"`
	IsLocal        bool                `json:"is_local"`
	FilePath       string              `json:"file_path,omitempty"`
	IsCached       bool                `json:"is_cached,omitempty"`
	RelevanceScore int                 `json:"relevance_score"`
	MatchType      docsearch.MatchType `json:"match_type"`
	Snippet        docsearch.Snippet   `json:"snippet"`
}

type searchResponse struct {
	Results       []searchHit `json:"results"`
	Count         int         `json:"count"`
	TotalMatches  int         `json:"total_matches"`
	Query         string      `json:"query"`
	SearchTimeMS  int64       `json:"search_time_ms"`
	TotalSearched int         `json:"total_searched"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	resp := searchResponse{Results: []searchHit{}, Query: req.Query}
	if req.Query == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	opts := docsearch.SearchOptions{Fuzzy: true}
	if req.Fuzzy != nil {
		opts.Fuzzy = *req.Fuzzy
	}

	start := time.Now()
	results, err := s.service.Search(r.Context(), req.Query, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	resp.SearchTimeMS = time.Since(start).Milliseconds()
	resp.TotalMatches = len(results)
	resp.TotalSearched = s.service.IndexInfo(r.Context()).TotalPages

	for _, res := range results[:min(len(results), MaxSearchResults)] {
		resp.Results = append(resp.Results, searchHit{
			SourceName:     res.Document.SourceName,
			SourceID:       res.Document.SourceID,
			Title:          res.Document.Title,
			PageName:       res.Document.PageName,
			URL:            res.Document.URL,
			IsLocal:        res.Document.IsLocal,
			FilePath:       res.Document.FilePath,
			IsCached:       res.Document.IsCached,
			RelevanceScore: res.Score,
			MatchType:      res.MatchType,
			Snippet:        res.Snippet,
		})
	}
	resp.Count = len(resp.Results)

	writeJSON(w, http.StatusOK, resp)
}

type messageResponse struct {
	Message string `json:"message"`
}

// handleRebuild starts a rebuild in the background and returns immediately.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if !s.rebuilding.CompareAndSwap(false, true) {
		writeError(w, s.logger, docsearch.Errorf(docsearch.EBUSY, "index rebuild already in progress"))
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		defer s.rebuilding.Store(false)
		info, err := s.service.BuildIndex(ctx)
		if err != nil {
			s.logger.Error("rebuild failed", "error", err)
			return
		}
		s.logger.Info("rebuild complete", "pages", info.TotalPages)
	}()

	writeJSON(w, http.StatusAccepted, messageResponse{Message: "index rebuild started in the background"})
}

type pathRequest struct {
	Path string `json:"path"`
}

type localUpdateResponse struct {
	Path    string `json:"path"`
	Updated bool   `json:"updated"`
}

func (s *Server) handleLocalUpdate(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodePath(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	ok, err := s.service.UpdateLocalFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, localUpdateResponse{Path: req.Path, Updated: ok})
}

type localRemoveResponse struct {
	Path    string `json:"path"`
	Removed bool   `json:"removed"`
}

func (s *Server) handleLocalRemove(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodePath(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	ok, err := s.service.RemoveLocalFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, localRemoveResponse{Path: req.Path, Removed: ok})
}

type cacheRequest struct {
	SourceIDs []string `json:"source_ids"`
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	var req cacheRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if len(req.SourceIDs) == 0 {
		writeError(w, s.logger, docsearch.Errorf(docsearch.EINVALID, "source_ids required"))
		return
	}

	batch, err := s.service.CacheSources(r.Context(), req.SourceIDs)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

type cacheStatusResponse struct {
	Sources []*docsearch.CacheMetadata `json:"sources"`
	Total   int                        `json:"total"`
}

func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	meta, err := s.service.CacheStatus(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if meta == nil {
		meta = []*docsearch.CacheMetadata{}
	}
	writeJSON(w, http.StatusOK, cacheStatusResponse{Sources: meta, Total: len(meta)})
}

func (s *Server) handleCachedPage(w http.ResponseWriter, r *http.Request) {
	sourceID := r.URL.Query().Get("source")
	pageURL := r.URL.Query().Get("url")
	if sourceID == "" || pageURL == "" {
		writeError(w, s.logger, docsearch.Errorf(docsearch.EINVALID, "source and url query parameters required"))
		return
	}

	md, err := s.service.CachedPage(r.Context(), sourceID, pageURL)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, md)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, s.logger, docsearch.Errorf(docsearch.EINVALID, "path query parameter required"))
		return
	}

	html, err := s.service.PreviewLocalFile(r.Context(), path)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return docsearch.Errorf(docsearch.EINVALID, "invalid JSON body: %v", err)
	}
	return nil
}

func decodePath(r *http.Request, req *pathRequest) error {
	if err := decodeJSON(r, req); err != nil {
		return err
	}
	if req.Path == "" {
		return docsearch.Errorf(docsearch.EINVALID, "path required")
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusCode maps an application error code to an HTTP status.
func StatusCode(code string) int {
	switch code {
	case docsearch.EBUSY:
		return http.StatusConflict
	case docsearch.EINVALID:
		return http.StatusBadRequest
	case docsearch.ENOTFOUND:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := docsearch.ErrorCode(err)
	if code == docsearch.EINTERNAL {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, StatusCode(code), errorResponse{
		Error: docsearch.ErrorMessage(err),
		Code:  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
