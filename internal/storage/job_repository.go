package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/types"
	"github.com/jackc/pgx/v5"
)

// ErrJobNotRunning is returned when a terminal transition targets a job that
// is missing or already terminal. Jobs never leave a terminal state.
var ErrJobNotRunning = errors.New("scan job is not running")

// JobRepository handles scan job persistence
type JobRepository struct {
	db *PostgresDB
}

// NewJobRepository creates a new scan job repository
func NewJobRepository(db *PostgresDB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new scan job record
func (r *JobRepository) Create(ctx context.Context, job *models.ScanJob) error {
	query := `
		INSERT INTO scan_jobs (job_id, category, tag, status, progress, channels_found, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		job.JobID,
		job.Category,
		job.Tag,
		job.Status,
		job.Progress,
		job.ChannelsFound,
		job.StartedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create scan job: %w", err)
	}

	return nil
}

// GetByID retrieves a scan job by its external identifier
func (r *JobRepository) GetByID(ctx context.Context, jobID string) (*models.ScanJob, error) {
	query := `
		SELECT id, job_id, category, tag, status, progress, channels_found,
		       error, started_at, completed_at, created_at
		FROM scan_jobs
		WHERE job_id = $1
	`

	var job models.ScanJob
	err := r.db.Pool().QueryRow(ctx, query, jobID).Scan(
		&job.ID,
		&job.JobID,
		&job.Category,
		&job.Tag,
		&job.Status,
		&job.Progress,
		&job.ChannelsFound,
		&job.Error,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewNotFoundError("scan job", jobID)
		}
		return nil, fmt.Errorf("failed to get scan job: %w", err)
	}

	return &job, nil
}

// UpdateProgress raises the progress of a running job. GREATEST keeps the
// value monotonically non-decreasing even if updates arrive out of order.
func (r *JobRepository) UpdateProgress(ctx context.Context, jobID string, progress int) error {
	query := `
		UPDATE scan_jobs
		SET progress = GREATEST(progress, $2)
		WHERE job_id = $1 AND status = 'running'
	`

	result, err := r.db.Pool().Exec(ctx, query, jobID, progress)
	if err != nil {
		return fmt.Errorf("failed to update scan job progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrJobNotRunning
	}

	return nil
}

// Complete transitions a running job to completed and records its result
// counters. The status predicate makes the terminal transition single-shot:
// a second call affects zero rows.
func (r *JobRepository) Complete(ctx context.Context, jobID string, channelsFound int, completedAt time.Time) error {
	query := `
		UPDATE scan_jobs
		SET status = 'completed', progress = 100, channels_found = $2, completed_at = $3
		WHERE job_id = $1 AND status = 'running'
	`

	result, err := r.db.Pool().Exec(ctx, query, jobID, channelsFound, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete scan job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.terminalTransitionError(ctx, jobID)
	}

	return nil
}

// MarkFailed transitions a running job to failed with a reason. Partial
// progress and channels_found are retained: rows already committed for the
// job stay visible through the channels endpoint.
func (r *JobRepository) MarkFailed(ctx context.Context, jobID string, reason string, failedAt time.Time) error {
	query := `
		UPDATE scan_jobs
		SET status = 'failed', error = $2, completed_at = $3
		WHERE job_id = $1 AND status = 'running'
	`

	result, err := r.db.Pool().Exec(ctx, query, jobID, reason, failedAt)
	if err != nil {
		return fmt.Errorf("failed to mark scan job failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.terminalTransitionError(ctx, jobID)
	}

	return nil
}

// terminalTransitionError distinguishes a missing job from one that has
// already reached a terminal state.
func (r *JobRepository) terminalTransitionError(ctx context.Context, jobID string) error {
	if _, err := r.GetByID(ctx, jobID); err != nil {
		return err
	}
	return ErrJobNotRunning
}

// ListRecent retrieves the most recently created jobs, newest first
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]*models.ScanJob, error) {
	query := `
		SELECT id, job_id, category, tag, status, progress, channels_found,
		       error, started_at, completed_at, created_at
		FROM scan_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ScanJob
	for rows.Next() {
		var job models.ScanJob
		err := rows.Scan(
			&job.ID,
			&job.JobID,
			&job.Category,
			&job.Tag,
			&job.Status,
			&job.Progress,
			&job.ChannelsFound,
			&job.Error,
			&job.StartedAt,
			&job.CompletedAt,
			&job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan jobs: %w", err)
	}

	return jobs, nil
}

// CountByStatus counts jobs currently in the given status
func (r *JobRepository) CountByStatus(ctx context.Context, status types.JobStatus) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM scan_jobs WHERE status = $1`, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scan jobs: %w", err)
	}
	return count, nil
}

// CountDistinctCategories counts distinct non-placeholder scan categories
func (r *JobRepository) CountDistinctCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(DISTINCT category) FROM scan_jobs WHERE category != 'N/A'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scan categories: %w", err)
	}
	return count, nil
}
