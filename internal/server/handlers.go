package server

import (
	"encoding/json"
	"errors"
	"net/http"

	syncengine "github.com/onohta/tradebook/internal/sync"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "tradebook",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleTriggerSync handles POST /api/sync
// Triggers one sync cycle. When a cycle is already running the call is a
// no-op and still reports ok.
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if s.syncEngine == nil {
		http.Error(w, "Sync is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := s.syncEngine.Sync(r.Context()); err != nil {
		if errors.Is(err, syncengine.ErrNotAuthenticated) {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		s.log.Error().Err(err).Msg("Sync failed")
		http.Error(w, "Sync failed", http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSyncStatus handles GET /api/sync/status
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	syncing := s.syncEngine != nil && s.syncEngine.IsSyncing()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"configured": s.syncEngine != nil,
		"syncing":    syncing,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
