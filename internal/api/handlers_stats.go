package api

import (
	"net/http"

	"github.com/channel-scanner/internal/logging"
)

// handleStatistics handles GET /stats - dashboard statistics snapshot.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.queryService.GetStatistics(r.Context())
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Error("Failed to aggregate statistics")
		statusCode, message := mapServiceError(err)
		respondError(w, statusCode, message)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
