// Package server exposes the provider gateways over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/skyhook-labs/cloudgate/pkg/gateway"
)

// Server routes HTTP requests onto the per-provider gateways.
type Server struct {
	cfg      config.Config
	gateways map[gateway.Provider]*gateway.Gateway
	logger   *slog.Logger
}

// New wires the handlers. gateways must contain an entry per served provider.
func New(cfg config.Config, gateways map[gateway.Provider]*gateway.Gateway, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, gateways: gateways, logger: logger}
}

// Routes assembles the full handler chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /run-aws", s.handleRun(gateway.ProviderAWS))
	mux.HandleFunc("POST /run-az", s.handleRun(gateway.ProviderAzure))
	mux.HandleFunc("POST /run-gcp", s.handleRun(gateway.ProviderGCP))
	mux.HandleFunc("GET /iam/users-without-mfa", s.handleUsersWithoutMFA)
	mux.HandleFunc("GET /.well-known/openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s.withRequestID(s.withLogging(s.withRecovery(mux)))
}

// ListenAndServe blocks until ctx is cancelled, then drains in-flight
// requests. Execution timeouts bound request duration, so the write timeout
// leaves headroom above the configured command timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.Timeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
