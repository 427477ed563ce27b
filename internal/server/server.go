// Package server provides the HTTP API that triggers and observes pipeline
// runs. This is an internal surface: the trigger endpoint answers immediately
// and runs the pipeline in the background, since a run takes far longer than
// any sane request timeout.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/recipepocket/content-agent/internal/db"
	"github.com/recipepocket/content-agent/internal/pipeline"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	runner     *pipeline.Runner
	database   *db.DB
	defaults   pipeline.RunOptions
	validate   *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port     int
	Runner   *pipeline.Runner
	Database *db.DB
	// Defaults seeds each run's options; requests may override per field.
	Defaults pipeline.RunOptions
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	s := &Server{
		runner:   cfg.Runner,
		database: cfg.Database,
		defaults: cfg.Defaults,
		validate: validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("POST /run/stream", s.handleRunStream)
	mux.HandleFunc("GET /runs/active", s.handleActiveRun)
	mux.HandleFunc("POST /articles/{id}/rewrite", s.handleManualRewrite)
	mux.HandleFunc("GET /articles", s.handleListArticles)
	mux.HandleFunc("POST /reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /reports/monthly/{month}", s.handleGetMonthlyReport)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
// Background pipeline runs are not cancelled; they finish or the process
// exits with them.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("content-agent API listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
