package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/types"
	"github.com/google/uuid"
)

func newTestJob(category, tag string) *models.ScanJob {
	return &models.ScanJob{
		JobID:     "job-" + uuid.New().String(),
		Category:  category,
		Tag:       tag,
		Status:    types.JobStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

func TestJobRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	job := newTestJob("marketing", "")
	cleanupJob(t, db, job.JobID)

	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.JobID != job.JobID {
		t.Errorf("JobID = %s, want %s", got.JobID, job.JobID)
	}
	if got.Category != "marketing" {
		t.Errorf("Category = %s, want marketing", got.Category)
	}
	if got.Status != types.JobStatusRunning {
		t.Errorf("Status = %s, want running", got.Status)
	}
	if got.Progress != 0 || got.ChannelsFound != 0 {
		t.Errorf("new job has progress %d, channels %d, want 0, 0", got.Progress, got.ChannelsFound)
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
	}
}

func TestJobRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	_, err := repo.GetByID(ctx, "job-does-not-exist")
	var serviceErr *types.ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code != types.ErrCodeNotFound {
		t.Errorf("GetByID() error = %v, want NOT_FOUND", err)
	}
}

func TestJobRepository_UpdateProgress_Monotonic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	job := newTestJob("crypto", "")
	cleanupJob(t, db, job.JobID)
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdateProgress(ctx, job.JobID, 60); err != nil {
		t.Fatalf("UpdateProgress(60) error = %v", err)
	}
	// A stale lower update must not move progress backwards
	if err := repo.UpdateProgress(ctx, job.JobID, 40); err != nil {
		t.Fatalf("UpdateProgress(40) error = %v", err)
	}

	got, err := repo.GetByID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Progress != 60 {
		t.Errorf("Progress = %d, want 60", got.Progress)
	}
}

func TestJobRepository_Complete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	job := newTestJob("marketing", "")
	cleanupJob(t, db, job.JobID)
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	completedAt := time.Now().UTC()
	if err := repo.Complete(ctx, job.JobID, 2, completedAt); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got, err := repo.GetByID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != types.JobStatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
	if got.Progress != 100 {
		t.Errorf("Progress = %d, want 100", got.Progress)
	}
	if got.ChannelsFound != 2 {
		t.Errorf("ChannelsFound = %d, want 2", got.ChannelsFound)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt is nil after Complete")
	}
}

func TestJobRepository_Complete_AlreadyTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	job := newTestJob("marketing", "")
	cleanupJob(t, db, job.JobID)
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Complete(ctx, job.JobID, 2, time.Now().UTC()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	// Second terminal transition must be rejected and leave the row alone
	err := repo.Complete(ctx, job.JobID, 99, time.Now().UTC())
	if !errors.Is(err, ErrJobNotRunning) {
		t.Fatalf("second Complete() error = %v, want ErrJobNotRunning", err)
	}
	err = repo.MarkFailed(ctx, job.JobID, "late failure", time.Now().UTC())
	if !errors.Is(err, ErrJobNotRunning) {
		t.Fatalf("MarkFailed() after Complete error = %v, want ErrJobNotRunning", err)
	}

	got, err := repo.GetByID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != types.JobStatusCompleted || got.ChannelsFound != 2 {
		t.Errorf("terminal row changed: status %s, channels %d", got.Status, got.ChannelsFound)
	}
}

func TestJobRepository_Complete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	err := repo.Complete(ctx, "job-does-not-exist", 1, time.Now().UTC())
	var serviceErr *types.ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code != types.ErrCodeNotFound {
		t.Errorf("Complete() error = %v, want NOT_FOUND", err)
	}
}

func TestJobRepository_MarkFailed_RetainsCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	job := newTestJob("crypto", "")
	cleanupJob(t, db, job.JobID)
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.UpdateProgress(ctx, job.JobID, 50); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	if err := repo.MarkFailed(ctx, job.JobID, "source unavailable", time.Now().UTC()); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	got, err := repo.GetByID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != types.JobStatusFailed {
		t.Errorf("Status = %s, want failed", got.Status)
	}
	if got.Error == nil || *got.Error != "source unavailable" {
		t.Errorf("Error = %v, want source unavailable", got.Error)
	}
	if got.Progress != 50 {
		t.Errorf("Progress = %d, want partial progress retained", got.Progress)
	}
}

func TestJobRepository_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	var jobIDs []string
	for i := 0; i < 3; i++ {
		job := newTestJob(fmt.Sprintf("order-test-%d", i), "")
		cleanupJob(t, db, job.JobID)
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		jobIDs = append(jobIDs, job.JobID)
		time.Sleep(10 * time.Millisecond)
	}

	jobs, err := repo.ListRecent(ctx, 100)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}

	// Our jobs must appear newest first
	var positions []int
	for _, id := range jobIDs {
		for i, j := range jobs {
			if j.JobID == id {
				positions = append(positions, i)
			}
		}
	}
	if len(positions) != 3 {
		t.Fatalf("found %d of 3 created jobs in ListRecent", len(positions))
	}
	if !(positions[2] < positions[1] && positions[1] < positions[0]) {
		t.Errorf("jobs not ordered newest first: positions %v", positions)
	}
}

func TestJobRepository_CountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepository(db)
	ctx := testContext(t)

	before, err := repo.CountByStatus(ctx, types.JobStatusRunning)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}

	job := newTestJob("marketing", "")
	cleanupJob(t, db, job.JobID)
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	after, err := repo.CountByStatus(ctx, types.JobStatusRunning)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if after != before+1 {
		t.Errorf("running count = %d, want %d", after, before+1)
	}

	if err := repo.Complete(ctx, job.JobID, 0, time.Now().UTC()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	final, err := repo.CountByStatus(ctx, types.JobStatusRunning)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if final != before {
		t.Errorf("running count after completion = %d, want %d", final, before)
	}
}
