// Package web hosts the galleria HTTP API: a JSON surface over media
// storage, face indexing and search, and resume tailoring.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dsarkar/galleria/internal/web/handlers"
	"github.com/dsarkar/galleria/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services carries the backends the API serves. Any field may be nil when
// its subsystem is not configured; the affected endpoints then respond 500
// while the rest of the API keeps working.
type Services struct {
	Store    handlers.MediaStore
	Indexer  handlers.FaceIndexService
	Searcher handlers.FaceSearchService
	Resume   handlers.ResumeService
}

// Server represents the web server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server
func NewServer(port int, host string, services Services) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	// Set up routes
	s.setupRoutes(services)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // bulk indexing can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
