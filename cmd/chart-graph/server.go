package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server wraps the HTTP server and its lifecycle.
type Server struct {
	container *Container
	srv       *http.Server
}

// NewServer creates a new HTTP server with routes.
func NewServer(container *Container) *Server {
	mux := http.NewServeMux()
	container.Handler.Register(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", container.Config.Port),
		Handler:      otelhttp.NewHandler(mux, "chart-graph"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return &Server{
		container: container,
		srv:       srv,
	}
}

// Run starts the server and handles graceful shutdown.
func (s *Server) Run() error {
	log := s.container.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first clone runs in the background; /api/repo answers 503 until it lands.
	if repo := s.container.GitRepo; repo != nil {
		go func() {
			if err := repo.Start(ctx); err != nil {
				log.Error("failed to start chart repo sync", "error", err)
			}
		}()
		defer repo.Stop()
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.Int("port", s.container.Config.Port), "version", version)
		errCh <- s.srv.ListenAndServe()
	}()

	// Wait for shutdown signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := s.container.Telemetry.Shutdown(shutdownCtx); err != nil {
		log.Error("telemetry shutdown failed", "error", err)
	}

	log.Info("server stopped")
	return nil
}
