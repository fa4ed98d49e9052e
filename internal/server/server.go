// internal/server/server.go

// Package server exposes the filtering pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/valpere/reachlist/internal/config"
	"github.com/valpere/reachlist/internal/monitoring"
	"github.com/valpere/reachlist/internal/pipeline"
	"github.com/valpere/reachlist/internal/utils"
)

// maxGoroutines is the point at which the health endpoint reports degraded
const maxGoroutines = 10000

// Options carries the collaborators of a Server.
type Options struct {
	Logger  utils.Logger
	Version string

	// Metrics is created from the configuration when nil and metrics are enabled
	Metrics *monitoring.MetricsManager
}

// Server serves the filter endpoint together with health and metrics routes.
type Server struct {
	mu       sync.RWMutex
	cfg      *config.ServiceConfig
	pipeline *pipeline.Pipeline
	limiter  *utils.RateLimiter

	logger  utils.Logger
	metrics *monitoring.MetricsManager
	health  *monitoring.HealthManager
	handler http.Handler

	httpMu     sync.Mutex
	httpServer *http.Server
}

// New builds a server from cfg. cfg is expected to be validated already.
func New(cfg *config.ServiceConfig, opts Options) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.Metrics == nil && cfg.Metrics.Enabled {
		opts.Metrics = monitoring.NewMetricsManager(cfg.Metrics.Namespace)
	}

	s := &Server{
		logger:  opts.Logger,
		metrics: opts.Metrics,
		health:  monitoring.NewHealthManager(opts.Version),
	}
	if err := s.UpdateConfig(cfg); err != nil {
		return nil, err
	}

	s.health.RegisterCheck(monitoring.ConfigHealthCheck(func() error {
		current, _, _ := s.snapshot()
		return current.Validate()
	}))
	s.health.RegisterCheck(monitoring.GoroutineHealthCheck(maxGoroutines))

	s.handler = s.routes(cfg)
	return s, nil
}

// UpdateConfig swaps in a new configuration and the pipeline built from it.
// Requests already in flight finish with the previous pipeline. The listen
// address and metrics path are fixed for the lifetime of the server.
func (s *Server) UpdateConfig(cfg *config.ServiceConfig) error {
	p, err := pipeline.NewFromConfig(cfg, s.logger, s.metrics)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.pipeline = p
	s.limiter = utils.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.Burst)
	return nil
}

// Config returns the configuration currently in effect
func (s *Server) Config() *config.ServiceConfig {
	cfg, _, _ := s.snapshot()
	return cfg
}

func (s *Server) snapshot() (*config.ServiceConfig, *pipeline.Pipeline, *utils.RateLimiter) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.pipeline, s.limiter
}

func (s *Server) routes(cfg *config.ServiceConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleFilter).Methods(http.MethodGet).Name("filter")
	r.Handle("/health", s.health.HealthHandler()).Methods(http.MethodGet).Name("health")
	if cfg.Metrics.Enabled && s.metrics != nil {
		r.Handle(cfg.Metrics.Path, s.metrics.MetricsHandler()).Methods(http.MethodGet).Name("metrics")
	}

	r.Use(s.instrumentMiddleware, s.rateLimitMiddleware)

	return s.requestIDMiddleware(r)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.Config()
	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg := s.Config()

	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	s.httpMu.Lock()
	s.httpServer = httpServer
	s.httpMu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	s.logger.Infof("listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if err := s.Shutdown(context.Background()); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones, bounded by
// server.shutdown_timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.httpMu.Lock()
	httpServer := s.httpServer
	s.httpMu.Unlock()
	if httpServer == nil {
		return nil
	}

	if timeout := s.Config().Server.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.logger.Info("shutting down server")
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
