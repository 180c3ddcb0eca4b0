// Package http serves a single cab's ambient HTTP surface: health and
// readiness probes, Prometheus metrics, and a small command-injection API
// a dispatcher (or an operator) uses to drive the control engine. Real-time
// state streaming lives in internal/session, not here — this server never
// touches a WebSocket.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dpetrov/elevator-cab/internal/constants"
	"github.com/dpetrov/elevator-cab/internal/engine"
	"github.com/dpetrov/elevator-cab/internal/infra/config"
	"github.com/dpetrov/elevator-cab/internal/infra/health"
	"github.com/dpetrov/elevator-cab/internal/queue"
)

// Server is the cab's HTTP frontend.
type Server struct {
	httpServer    *http.Server
	cfg           *config.Config
	logger        *slog.Logger
	healthService *health.HealthService
}

// NewServer wires routes and middleware for one cab's engine and command
// queue and binds to cfg.Port.
func NewServer(cfg *config.Config, eng *engine.Engine, cmds *queue.CommandQueue, healthService *health.HealthService) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        slog.With(slog.String("component", constants.ComponentHTTPServer)),
		healthService: healthService,
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	v1 := NewV1Handlers(eng, cmds, s.logger)

	rateLimiter := NewRateLimitMiddleware(600, s.logger)
	chain := ChainMiddleware(
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		RecoveryMiddleware(s.logger),
		CORSMiddleware(),
		SecurityHeadersMiddleware(),
		rateLimiter.Handler(),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1", v1.APIInfoHandler)
	mux.HandleFunc("/v1/command", v1.CommandHandler)
	mux.HandleFunc("/v1/status", v1.StatusHandler)
	mux.HandleFunc(cfg.HealthPath, s.livenessHandler)
	mux.HandleFunc("/readyz", s.readinessHandler)
	if cfg.MetricsEnabled {
		mux.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      chain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.healthService.Check(r.Context(), "liveness")
	if err != nil {
		http.Error(w, "liveness check failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", constants.ContentTypeJSON)
	if result.Status == health.StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSONBody(w, s.logger, result)
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	overallStatus, results := s.healthService.GetOverallStatus(r.Context())

	w.Header().Set("Content-Type", constants.ContentTypeJSON)
	statusCode := http.StatusOK
	if overallStatus == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	w.WriteHeader(statusCode)
	writeJSONBody(w, s.logger, map[string]interface{}{
		"status":    string(overallStatus),
		"timestamp": time.Now(),
		"checks":    results,
	})
}

// GetHandler exposes the wired handler for tests.
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
