package api

import (
	"net/http"
	"strconv"

	"github.com/channel-scanner/internal/logging"
	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/service"
)

// handleListChannels handles GET /channels - channels ordered by subscribers
// descending, optionally filtered by job_id. limit=0 is a valid request for
// an empty page; a missing or unparsable limit uses the default.
func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	jobID := query.Get("job_id")

	limit := service.DefaultChannelLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l >= 0 {
			limit = l
		}
	}

	channels, err := s.queryService.ListChannels(r.Context(), jobID, limit)
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Error("Failed to list channels")
		statusCode, message := mapServiceError(err)
		respondError(w, statusCode, message)
		return
	}

	if channels == nil {
		channels = []*models.ChannelView{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"channels": channels,
	})
}
