// Package service implements the scan job lifecycle, channel ingestion and
// read-side aggregation on top of the storage repositories.
package service

import (
	"context"
	"time"

	"github.com/channel-scanner/internal/logging"
	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/scraper"
	"github.com/channel-scanner/internal/types"
	"github.com/google/uuid"
)

// JobStore defines the scan job persistence operations used by ScanService
type JobStore interface {
	Create(ctx context.Context, job *models.ScanJob) error
	GetByID(ctx context.Context, jobID string) (*models.ScanJob, error)
	UpdateProgress(ctx context.Context, jobID string, progress int) error
	Complete(ctx context.Context, jobID string, channelsFound int, completedAt time.Time) error
	MarkFailed(ctx context.Context, jobID string, reason string, failedAt time.Time) error
	ListRecent(ctx context.Context, limit int) ([]*models.ScanJob, error)
}

// ChannelStore defines the channel persistence operations used by ScanService
type ChannelStore interface {
	Upsert(ctx context.Context, channel *models.Channel, tags []string, admin string) (int64, error)
}

// ReadCache invalidates cached read views after a scan commits
type ReadCache interface {
	InvalidateReadViews(ctx context.Context) error
}

// ScanService drives the scan job lifecycle and the channel ingestion pipeline
type ScanService struct {
	jobs     JobStore
	channels ChannelStore
	source   scraper.ChannelSource
	cache    ReadCache // optional
}

// NewScanService creates a new scan service
func NewScanService(jobs JobStore, channels ChannelStore, source scraper.ChannelSource, cache ReadCache) *ScanService {
	return &ScanService{
		jobs:     jobs,
		channels: channels,
		source:   source,
		cache:    cache,
	}
}

// ScanResult represents the outcome of a completed scan request
type ScanResult struct {
	JobID         string          `json:"job_id"`
	Status        types.JobStatus `json:"status"`
	ChannelsFound int             `json:"channels_found"`
	Skipped       int             `json:"-"` // malformed items skipped during ingestion
}

// CreateJob validates the scan parameters and persists a running job.
// Jobs are created already in-flight: the pipeline runs in the same request.
func (s *ScanService) CreateJob(ctx context.Context, category, tag string) (string, error) {
	if category == "" && tag == "" {
		return "", types.NewValidationError("Category or tag required")
	}

	// Random identifier: unique under concurrent creation, unlike a
	// time-derived token.
	jobID := "job-" + uuid.New().String()

	storedCategory := category
	if storedCategory == "" {
		storedCategory = "N/A"
	}

	job := &models.ScanJob{
		JobID:         jobID,
		Category:      storedCategory,
		Tag:           tag,
		Status:        types.JobStatusRunning,
		Progress:      0,
		ChannelsFound: 0,
		StartedAt:     time.Now().UTC(),
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return "", types.NewStoreError("create scan job", err)
	}

	return jobID, nil
}

// Ingest persists a batch of discovered channels for a job. Items with a
// malformed link are skipped and counted; one bad record never aborts the
// batch. Returns the number of channels actually persisted.
func (s *ScanService) Ingest(ctx context.Context, jobID string, discovered []scraper.DiscoveredChannel) (inserted, skipped int, err error) {
	logger := logging.GetGlobalLogger().WithField("jobId", jobID)

	for i, item := range discovered {
		channelID, derr := scraper.ChannelIDFromLink(item.Link)
		if derr != nil {
			skipped++
			logger.WithFields(map[string]interface{}{
				"link":  item.Link,
				"error": derr.Error(),
			}).Warn("Skipping channel with malformed link")
			continue
		}

		channel := &models.Channel{
			JobID:       jobID,
			ChannelID:   channelID,
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Subscribers: item.Subscribers,
			Verified:    item.Verified,
		}

		if _, uerr := s.channels.Upsert(ctx, channel, item.Tags, item.Admin); uerr != nil {
			return inserted, skipped, types.NewStoreError("ingest channel", uerr)
		}
		inserted++

		progress := (i + 1) * 100 / len(discovered)
		if perr := s.jobs.UpdateProgress(ctx, jobID, progress); perr != nil {
			logger.WithError(perr).Warn("Failed to update scan progress")
		}
	}

	return inserted, skipped, nil
}

// CompleteJob transitions a job to its completed terminal state
func (s *ScanService) CompleteJob(ctx context.Context, jobID string, channelsFound int) error {
	return s.jobs.Complete(ctx, jobID, channelsFound, time.Now().UTC())
}

// FailJob transitions a job to its failed terminal state, retaining partial
// progress and counters.
func (s *ScanService) FailJob(ctx context.Context, jobID string, reason string) error {
	return s.jobs.MarkFailed(ctx, jobID, reason, time.Now().UTC())
}

// RunScan executes a full scan synchronously: create job, discover channels,
// ingest, complete. The completion counter records channels persisted, not
// channels attempted.
func (s *ScanService) RunScan(ctx context.Context, category, tag string) (*ScanResult, error) {
	jobID, err := s.CreateJob(ctx, category, tag)
	if err != nil {
		return nil, err
	}

	logger := logging.GetGlobalLogger().WithFields(map[string]interface{}{
		"jobId":    jobID,
		"category": category,
		"tag":      tag,
	})
	logger.Info("Scan started")

	discovered, err := s.source.Discover(ctx, category, tag)
	if err != nil {
		if ferr := s.FailJob(ctx, jobID, err.Error()); ferr != nil {
			logger.WithError(ferr).Error("Failed to mark scan job failed")
		}
		return nil, types.NewStoreError("discover channels", err)
	}

	inserted, skipped, err := s.Ingest(ctx, jobID, discovered)
	if err != nil {
		if ferr := s.FailJob(ctx, jobID, err.Error()); ferr != nil {
			logger.WithError(ferr).Error("Failed to mark scan job failed")
		}
		return nil, err
	}

	if err := s.CompleteJob(ctx, jobID, inserted); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cerr := s.cache.InvalidateReadViews(ctx); cerr != nil {
			// Stale cache entries expire on their own TTL
			logger.WithError(cerr).Warn("Failed to invalidate read cache")
		}
	}

	logger.WithFields(map[string]interface{}{
		"channelsFound": inserted,
		"skipped":       skipped,
	}).Info("Scan completed")

	return &ScanResult{
		JobID:         jobID,
		Status:        types.JobStatusCompleted,
		ChannelsFound: inserted,
		Skipped:       skipped,
	}, nil
}

// JobSummary is the job list projection served by the scan status endpoint
type JobSummary struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Status        types.JobStatus `json:"status"`
	Progress      int             `json:"progress"`
	ChannelsFound int             `json:"channelsFound"`
	StartedAt     string          `json:"startedAt"` // HH:MM, matching the dashboard display
}

// ListRecentJobs returns a newest-first snapshot of recent jobs, capped at limit
func (s *ScanService) ListRecentJobs(ctx context.Context, limit int) ([]JobSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	jobs, err := s.jobs.ListRecent(ctx, limit)
	if err != nil {
		return nil, types.NewStoreError("list scan jobs", err)
	}

	summaries := make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, JobSummary{
			ID:            job.JobID,
			Category:      job.Category,
			Status:        job.Status,
			Progress:      job.Progress,
			ChannelsFound: job.ChannelsFound,
			StartedAt:     job.StartedAt.Format("15:04"),
		})
	}

	return summaries, nil
}
