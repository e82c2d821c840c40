package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Middleware wraps the server's routes, e.g. for request metrics.
type Middleware func(http.Handler) http.Handler

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	metricsPath string
	middleware  []Middleware
}

// WithMetricsPath mounts the metrics handler at path instead of /metrics.
func WithMetricsPath(path string) ServerOption {
	return func(c *serverConfig) {
		if path != "" {
			c.metricsPath = path
		}
	}
}

// WithMiddleware wraps every route, outermost first.
func WithMiddleware(mw ...Middleware) ServerOption {
	return func(c *serverConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// Server exposes the hub and health endpoints.
type Server struct {
	srv    *http.Server
	hub    *Hub
	logger *slog.Logger
}

// NewServer creates a server on port. metricsHandler may be nil, in which case
// no metrics route is served.
func NewServer(port int, hub *Hub, metricsHandler http.Handler, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := serverConfig{metricsPath: "/metrics"}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Server{hub: hub, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.Handle("/ws", hub)
	if metricsHandler != nil {
		mux.Handle(cfg.metricsPath, metricsHandler)
	}

	var h http.Handler = mux
	for i := len(cfg.middleware) - 1; i >= 0; i-- {
		h = cfg.middleware[i](h)
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting live server", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("live server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.Close()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown live server: %w", err)
	}
	s.logger.Info("live server stopped")
	return nil
}

type healthResponse struct {
	Status     string         `json:"status"`
	Components map[string]any `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := healthResponse{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	snap, ok := s.hub.Latest()
	if !ok {
		health.Status = "degraded"
		health.Components["poller"] = map[string]any{"status": "waiting for first poll"}
	} else {
		health.Components["poller"] = map[string]any{
			"last_poll": snap.PolledAt,
			"records":   len(snap.Records),
		}
	}
	health.Components["websocket"] = map[string]any{"clients": s.hub.Clients()}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.hub.Latest()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newSnapshotMessage(snap))
}
