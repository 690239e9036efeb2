package models

import "time"

// Channel represents one discovered channel persisted against a scan job.
// JobID is a weak reference to scan_jobs.job_id: deleting a job must never
// cascade into channel history.
type Channel struct {
	ID          int64     `json:"id" db:"id"`
	JobID       string    `json:"jobId" db:"job_id"`
	ChannelID   string    `json:"channelId" db:"channel_id"` // external id, last path segment of the link
	Title       string    `json:"title" db:"title"`
	Link        string    `json:"link" db:"link"`
	Description string    `json:"description" db:"description"`
	Subscribers int64     `json:"subscribers" db:"subscribers"`
	Verified    bool      `json:"verified" db:"verified"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ChannelView is the read-side projection of a channel with its aggregated
// tags and admin name, as served by the channels endpoint.
type ChannelView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Subscribers int64    `json:"subscribers"`
	Verified    bool     `json:"verified"`
	Tags        []string `json:"tags"`  // never nil, renders as [] when absent
	Admin       string   `json:"admin"` // empty string when no admin record
}
