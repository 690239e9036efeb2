// Package models contains database row representations.
package models

import (
	"time"

	"github.com/channel-scanner/internal/types"
)

// ScanJob represents one scan request's lifecycle record in the database
type ScanJob struct {
	ID            int64           `json:"-" db:"id"`
	JobID         string          `json:"jobId" db:"job_id"`
	Category      string          `json:"category" db:"category"` // "N/A" when the scan was tag-only
	Tag           string          `json:"tag" db:"tag"`
	Status        types.JobStatus `json:"status" db:"status"`
	Progress      int             `json:"progress" db:"progress"` // 0-100, monotonic while running
	ChannelsFound int             `json:"channelsFound" db:"channels_found"`
	Error         *string         `json:"error,omitempty" db:"error"`
	StartedAt     time.Time       `json:"startedAt" db:"started_at"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}
