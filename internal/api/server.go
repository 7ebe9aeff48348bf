package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docintel/internal/llm"
	"github.com/dgallion1/docintel/internal/pipeline"
)

// Server is the HTTP API that triggers and reports batch runs.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	claude       *llm.ClaudeClient
	log          *slog.Logger
	apiKey       string
}

// NewServer creates and configures the HTTP server. claude may be nil when
// no enabled agent calls the API.
func NewServer(orch *pipeline.Orchestrator, claude *llm.ClaudeClient, log *slog.Logger, apiKey string) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		orchestrator: orch,
		claude:       claude,
		log:          log,
		apiKey:       apiKey,
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
	r.Use(logRequests(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey(s.apiKey, s.log))

		r.Post("/api/runs", s.handleStartRun)
		r.Get("/api/runs/{runID}", s.handleRunStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"busy":   s.orchestrator.Active(),
	})
}
