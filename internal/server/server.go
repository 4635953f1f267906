// Package server exposes the tutor as a web widget and a small JSON API.
// Each browser gets its own lesson session, identified by a cookie.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/agbru/gcdtutor/internal/logging"
	"github.com/agbru/gcdtutor/internal/orchestration"
	"github.com/agbru/gcdtutor/internal/tutor"
)

// Default server settings.
const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultMaxSessions   = 1000
	DefaultSweepInterval = time.Minute
	DefaultShutdown      = 10 * time.Second
)

// Config holds the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// Timeout bounds every collaborator call made on behalf of a request.
	Timeout time.Duration
	// SessionTTL is the idle lifetime of a browser session.
	SessionTTL time.Duration
	// MaxSessions caps the number of live sessions.
	MaxSessions int
	// Security controls headers, CORS and body size.
	Security SecurityConfig
	// Version is reported by /healthz.
	Version string
}

// Server serves the widget, the JSON API, /metrics and /healthz.
type Server struct {
	config   Config
	tutor    *tutor.Tutor
	sessions *SessionStore
	metrics  *Metrics
	logger   logging.Logger
	page     *template.Template
	static   fs.FS
	started  time.Time
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics uses m instead of a fresh registry. The same Metrics should be
// given to the tutor as its Recorder.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a server whose sessions share t. Zero Config fields take their
// defaults.
func New(t *tutor.Tutor, cfg Config, opts ...Option) (*Server, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Security.MaxBodyBytes <= 0 {
		cfg.Security.MaxBodyBytes = DefaultSecurityConfig().MaxBodyBytes
	}

	page, err := template.ParseFS(widgetFS, "widget/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse widget template: %w", err)
	}
	static, err := fs.Sub(widgetFS, "widget/static")
	if err != nil {
		return nil, fmt.Errorf("open widget assets: %w", err)
	}

	s := &Server{
		config:  cfg,
		tutor:   t,
		logger:  logging.NopLogger{},
		page:    page,
		static:  static,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.sessions = NewSessionStore(func() *orchestration.Session {
		return orchestration.NewSession(t, orchestration.WithLogger(s.logger))
	}, cfg.SessionTTL, cfg.MaxSessions)
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with every middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's Prometheus collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	mux.HandleFunc("POST /api/calculate", s.handleCalculate)
	mux.HandleFunc("POST /api/explain", s.handleExplain)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/speech", s.handleSpeech)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)

	return SecurityMiddleware(s.config.Security, s.metricsMiddleware(mux.ServeHTTP))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.RunJanitor(janitorCtx, DefaultSweepInterval, s.metrics.SetSessions)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// callContext bounds a collaborator call made for r.
func (s *Server) callContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		return context.WithTimeout(r.Context(), s.config.Timeout)
	}
	return context.WithCancel(r.Context())
}
