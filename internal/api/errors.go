package api

import (
	"encoding/json"
	"net/http"

	"github.com/channel-scanner/internal/types"
)

// ErrorResponse represents an API error response. The error field is the
// plain message string the dashboard displays.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// mapServiceError maps service errors to HTTP status codes and messages.
func mapServiceError(err error) (int, string) {
	if serviceErr, ok := err.(*types.ServiceError); ok {
		switch serviceErr.Code {
		case types.ErrCodeValidation:
			return http.StatusBadRequest, serviceErr.Message
		case types.ErrCodeNotFound:
			return http.StatusNotFound, serviceErr.Message
		default:
			return http.StatusInternalServerError, "An internal error occurred"
		}
	}

	// Default to internal server error
	return http.StatusInternalServerError, "An internal error occurred"
}
