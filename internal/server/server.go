// Package server exposes the generation pipeline as a small JSON API for
// the surrounding lesson/practice application. Callers arrive
// pre-authenticated; auth and session handling live upstream.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fcegen/internal/exercisegen"
	"fcegen/internal/llm"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	generator *exercisegen.Generator
	quota     *llm.QuotaRegistry
	models    []string
	log       *zap.Logger
}

// New creates a Server over the given generator and gateway state.
func New(generator *exercisegen.Generator, gateway *llm.Gateway, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		generator: generator,
		quota:     gateway.Quota(),
		models:    gateway.Models(),
		log:       log,
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/exercises", s.handleGenerate)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

type generateRequest struct {
	Category      string `json:"category"`
	FirstLanguage string `json:"first_language"`
	Age           int    `json:"age"`
	Level         string `json:"level"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	category, err := exercisegen.ParseCategory(body.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	level, err := exercisegen.ParseLevel(body.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Age <= 0 || body.Age > 120 {
		writeError(w, http.StatusBadRequest, "age must be between 1 and 120")
		return
	}

	result, err := s.generator.Generate(r.Context(), exercisegen.GenerationRequest{
		ErrorCategory: category,
		FirstLanguage: body.FirstLanguage,
		Age:           body.Age,
		Level:         level,
	})
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			// Client went away; nothing useful to write.
			return
		}
		s.log.Error("generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}

	// An empty question list is a defined outcome: try again later.
	writeJSON(w, http.StatusOK, result)
}

type modelStatus struct {
	Name    string `json:"name"`
	Used    int    `json:"used"`
	Ceiling int    `json:"ceiling"`
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	out := make([]modelStatus, 0, len(s.models))
	for _, name := range s.models {
		out = append(out, modelStatus{
			Name:    name,
			Used:    s.quota.Used(name),
			Ceiling: s.quota.Ceiling(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
