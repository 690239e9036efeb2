package api

import (
	"net/http"

	"github.com/channel-scanner/internal/logging"
	"github.com/channel-scanner/internal/service"
)

// recentJobsLimit caps the job list served by GET /scan
const recentJobsLimit = 20

// handleStartScan handles POST /scan - run a channel scan for a category or tag.
// The job is created, ingested and completed within this request; the response
// carries the terminal state.
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Tag      string `json:"tag"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := parseJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if req.Category == "" && req.Tag == "" {
		respondError(w, http.StatusBadRequest, "Category or tag required")
		return
	}

	result, err := s.scanService.RunScan(r.Context(), req.Category, req.Tag)
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Error("Scan failed")
		statusCode, message := mapServiceError(err)
		respondError(w, statusCode, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":         result.JobID,
		"status":         result.Status,
		"channels_found": result.ChannelsFound,
		"message":        "Scan completed successfully",
	})
}

// handleListJobs handles GET /scan - recent scan jobs, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.scanService.ListRecentJobs(r.Context(), recentJobsLimit)
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Error("Failed to list scan jobs")
		statusCode, message := mapServiceError(err)
		respondError(w, statusCode, message)
		return
	}

	if jobs == nil {
		jobs = []service.JobSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}
