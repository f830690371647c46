// Package server is the HTTP front end of the injector. It renders include
// markup on request, serves the web directory and exposes health and
// Prometheus endpoints.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
	"github.com/vango-dev/injector/pkg/middleware"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address (e.g. "localhost:8080").
	Address string

	// WebDir is the directory served as static files.
	WebDir string

	// WebFS overrides the static file system. Default: os.DirFS(WebDir).
	WebFS fs.FS

	// URLPrefix is the path the web directory is mounted under. Prefixes
	// that are absolute URLs mount it at "/". Default: "/".
	URLPrefix string

	// Metrics, when set, records HTTP metrics.
	Metrics *middleware.Metrics

	// Gatherer is exposed on /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// ReadHeaderTimeout bounds header reads. Default: 10s.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// Logger is used for request and lifecycle logs.
	Logger *slog.Logger
}

// Server serves inject requests and static files.
type Server struct {
	config   Config
	injector *assets.Injector
	static   fs.FS
	prefix   string
	router   chi.Router
	logger   *slog.Logger

	httpServer *http.Server
}

// New creates a Server for inj.
func New(inj *assets.Injector, cfg Config) *Server {
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	static := cfg.WebFS
	if static == nil && cfg.WebDir != "" {
		static = os.DirFS(cfg.WebDir)
	}

	s := &Server{
		config:   cfg,
		injector: inj,
		static:   static,
		prefix:   mountPrefix(cfg.URLPrefix),
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// mountPrefix returns the path the web directory is mounted under, always
// with leading and trailing slashes. Absolute URLs and page-relative
// prefixes mount at the root.
func mountPrefix(prefix string) string {
	if prefix == "" || strings.HasPrefix(prefix, ".") || strings.Contains(prefix, "://") || strings.HasPrefix(prefix, "//") {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if s.config.Metrics != nil {
		r.Use(s.config.Metrics.Handler)
	}
	r.Use(middleware.Tracing(middleware.WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz"
	})))
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/inject/{module}", s.handleInject)

	if s.static != nil {
		r.Handle(s.prefix+"*", http.HandlerFunc(s.serveStatic))
	}
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "prefix", s.prefix)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.New("E151").Wrap(err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// logRequests logs every request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
