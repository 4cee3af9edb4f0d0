// Package http serves the question-answering API over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	cors       *CORSMiddleware

	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
}

// Config holds server configuration
type Config struct {
	Addr        string
	CORSOrigins []string
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestService driving.IngestService,
	queryService driving.QueryService,
	documentService driving.DocumentService,
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		cors:            NewCORSMiddleware(cfg.CORSOrigins),
		ingestService:   ingestService,
		queryService:    queryService,
		documentService: documentService,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Answers can take a while; the write deadline covers the LLM call.
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/health", s.handleHealth)
	s.router.HandleFunc("POST /api/upload", s.handleUpload)
	s.router.HandleFunc("GET /api/documents", s.handleListDocuments)
	s.router.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	s.router.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)
	s.router.HandleFunc("POST /api/query", s.handleQuery)
}

// Handler returns the router wrapped in recovery, logging and CORS.
func (s *Server) Handler() http.Handler {
	return NewRecoveryMiddleware().Handler(
		NewLoggingMiddleware().Handler(
			s.cors.Handler(s.router)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
