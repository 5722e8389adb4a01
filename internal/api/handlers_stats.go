package api

import (
	"net/http"
)

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats().Snapshot(),
	})
}

// handleSchemas lists the header schema of every registered directive.
func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	directives := make(map[string][]string)
	for _, name := range s.registry.Directives() {
		allowed, _ := s.registry.Allowed(name)
		directives[name] = allowed
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"global":     s.registry.Global(),
		"directives": directives,
	})
}
