package web

import (
	"github.com/dsarkar/galleria/internal/web/handlers"
	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes(services Services) {
	// Create handlers
	mediaHandler := handlers.NewMediaHandler(services.Store)
	facesHandler := handlers.NewFacesHandler(services.Indexer, services.Searcher)
	tailorHandler := handlers.NewTailorHandler(services.Resume)

	// Health check
	s.router.Get("/api/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/media", func(r chi.Router) {
			r.Post("/upload", mediaHandler.Upload)
			r.Get("/list", mediaHandler.List)
			r.Post("/index-face", facesHandler.IndexFace)
			r.Post("/index-all", facesHandler.IndexAll)
			r.Post("/search-face", facesHandler.SearchFace)
		})

		r.Post("/tailor", tailorHandler.Tailor)
	})
}
