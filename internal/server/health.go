// Package server exposes the liveness probe for the surrounding
// deployment environment.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Health is a minimal HTTP server answering liveness checks.
type Health struct {
	srv    *http.Server
	logger zerolog.Logger
}

// NewHealth creates the liveness server listening on addr.
func NewHealth(addr string, logger zerolog.Logger) *Health {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Health{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// Start serves until the listener fails or Stop is called.
func (h *Health) Start() error {
	h.logger.Info().Str("addr", h.srv.Addr).Msg("Health endpoint listening")
	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (h *Health) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
