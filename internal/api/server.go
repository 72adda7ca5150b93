// Package api is the thin HTTP surface over the pipeline. It accepts
// already-fetched provider documents; calling the provider, fetching sources
// from storage, and rendering results are all collaborator concerns.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bmarkwell/docslice/internal/config"
	"github.com/bmarkwell/docslice/internal/pipeline"
)

// Server is the HTTP API server for docslice.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/extract/async", s.handleExtractAsync)
		r.Get("/api/extract/{jobID}/status", s.handleJobStatus)
		r.Get("/api/extract/{jobID}/result", s.handleJobResult)
		r.Get("/api/extract/{jobID}/html", s.handleJobHTML)
		r.Get("/api/stats/pipeline", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
