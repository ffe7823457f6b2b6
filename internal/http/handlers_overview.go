package http

import (
	"net/http"

	"spendlog/internal/assistant"
	"spendlog/internal/core"
)

type overviewResponse struct {
	Revision uint64       `json:"revision"`
	Summary  core.Summary `json:"summary"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	sum, rev, hit := s.overview()
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, overviewResponse{Revision: rev, Summary: sum})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":  core.Categories,
		"types":       []core.Type{core.Expense, core.Income},
		"suggestions": assistant.Suggestions,
	})
}
