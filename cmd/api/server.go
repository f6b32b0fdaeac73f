package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// StartServer creates and starts the HTTP server in a goroutine.
func StartServer(addr string, handler http.Handler, log zerolog.Logger) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	return srv
}

// GracefulShutdown stops the HTTP server and flushes telemetry within
// the timeout.
func GracefulShutdown(srv *http.Server, telemetryShutdown func(context.Context) error, timeout time.Duration, log zerolog.Logger) {
	log.Info().Msg("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down HTTP server")
	}

	if telemetryShutdown != nil {
		if err := telemetryShutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error shutting down telemetry")
		}
	}

	log.Info().Msg("server stopped")
}
