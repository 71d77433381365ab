// Package api exposes the tutoring pipeline over HTTP with JSON bodies.
// Routing uses method-qualified net/http mux patterns; there is no router
// dependency to carry.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/MLiu666/EvoWrite/internal/agent"
	"github.com/MLiu666/EvoWrite/internal/logger"
	"github.com/MLiu666/EvoWrite/internal/memory"
	"github.com/MLiu666/EvoWrite/internal/storage"
	"github.com/MLiu666/EvoWrite/internal/store"
)

type Server struct {
	agent   *agent.Agent
	store   *store.Store
	memory  *memory.Store
	archive *storage.Archive // nil when object storage is not configured
	mux     *http.ServeMux
}

func NewServer(a *agent.Agent, s *store.Store, mem *memory.Store, archive *storage.Archive) *Server {
	srv := &Server{
		agent:   a,
		store:   s,
		memory:  mem,
		archive: archive,
		mux:     http.NewServeMux(),
	}
	srv.routes()
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/learners", s.handleCreateLearner)
	s.mux.HandleFunc("GET /api/learners/{id}", s.handleGetLearner)
	s.mux.HandleFunc("PUT /api/learners/{id}", s.handleUpdateLearner)
	s.mux.HandleFunc("GET /api/learners/{id}/analytics", s.handleAnalytics)
	s.mux.HandleFunc("GET /api/learners/{id}/interactions", s.handleInteractions)
	s.mux.HandleFunc("GET /api/learners/{id}/memory", s.handleMemory)
	s.mux.HandleFunc("GET /api/learners/{id}/essays", s.handleEssays)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("PUT /api/sessions/{id}", s.handleUpdateSession)
	s.mux.HandleFunc("GET /api/intents", s.handleIntents)
	s.mux.HandleFunc("GET /api/system/health", s.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a request body, rejecting unknown top-level fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
