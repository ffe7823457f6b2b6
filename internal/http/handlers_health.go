package http

import (
	"context"
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	requests := s.tracer.GetMetrics()
	limits := s.chatLimiter.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"requests": map[string]int64{
			"total":         requests.TotalRequests,
			"server_errors": requests.ServerErrors,
		},
		"chat_rate_limit": map[string]int64{
			"rejected": limits.TotalHits,
			"clients":  limits.ClientCount,
		},
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"transactions": len(s.svc.List(emptyFilter)),
		"revision":     s.svc.Revision(),
	})
}
