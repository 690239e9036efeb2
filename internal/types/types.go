// Package types contains shared domain types for the channel scanner.
package types

import "fmt"

// JobStatus represents the lifecycle state of a scan job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status allows no further transitions
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// IsValid reports whether the status is one of the known lifecycle states
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Common service error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidChannel = "INVALID_CHANNEL"
	ErrCodeStore          = "STORE_ERROR"
)

// NewValidationError creates a validation error for malformed request input
func NewValidationError(message string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewNotFoundError creates a not found error for an absent resource
func NewNotFoundError(resource, id string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewInvalidChannelError creates a per-item ingestion error for a malformed channel
func NewInvalidChannelError(link, reason string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInvalidChannel,
		Message: fmt.Sprintf("invalid channel link %q: %s", link, reason),
		Details: map[string]interface{}{
			"link":   link,
			"reason": reason,
		},
	}
}

// NewStoreError wraps a persistence failure
func NewStoreError(operation string, cause error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeStore,
		Message: fmt.Sprintf("store error during %s: %v", operation, cause),
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}
