package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/specgest/internal/config"
	"github.com/dgallion1/specgest/internal/directive"
	"github.com/dgallion1/specgest/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for specgest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	registry     *directive.Registry
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, registry *directive.Registry, log *slog.Logger, cfg config.Config) *Server {
	if registry == nil {
		registry = directive.DefaultRegistry()
	}
	s := &Server{
		orchestrator: orch,
		registry:     registry,
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

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/parse", s.handleParse)
		r.Post("/parse/batch", s.handleBatchParse)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Get("/schemas", s.handleSchemas)
		r.Get("/stats/parse", s.handleParseStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
