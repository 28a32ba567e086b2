// Package webserver provides an HTTP server that exposes the benchmark
// analysis REST API and its Prometheus metrics.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/grainchain/grainbench/internal/comparator"
	"github.com/grainchain/grainbench/internal/webapi"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 8787

// Config holds the HTTP server configuration.
type Config struct {
	Port int
	// AllowRemote binds all interfaces instead of loopback only.
	AllowRemote bool
	Store       webapi.RunStore
	Comparator  *comparator.Comparator
	Defaults    webapi.Defaults
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg     Config
	srv     *http.Server
	metrics *webapi.Metrics
	logger  *slog.Logger
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("webserver: a run store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Defaults == (webapi.Defaults{}) {
		cfg.Defaults = webapi.DefaultDefaults()
	}

	host := "127.0.0.1"
	if cfg.AllowRemote {
		host = ""
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: webapi.NewMetrics(),
	}
	registerRoutes(mux, cfg, s.metrics)

	s.srv = &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
		Handler:           requestLogger(webapi.CORSMiddleware(mux, cfg.AllowedOrigins...), cfg.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled
// or the server fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("HTTP server starting", "address", ln.Addr().String())
	if s.cfg.AllowRemote {
		s.logger.Warn("HTTP server accepts remote connections", "address", ln.Addr().String())
	}

	// Graceful shutdown on context cancellation.
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	<-done
	return nil
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
