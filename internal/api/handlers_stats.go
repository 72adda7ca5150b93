package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":        s.orchestrator.Stats(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"workers":     s.cfg.WorkerCount,
	})
}
