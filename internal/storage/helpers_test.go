package storage

import (
	"context"
	"testing"
	"time"

	"github.com/channel-scanner/internal/config"
)

// testContext creates a context with timeout for tests
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// setupTestDB connects to the local test database, skipping when running in
// short mode or when Postgres is not available.
func setupTestDB(t *testing.T) *PostgresDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.PostgresConfig{
		Host:           "localhost",
		Port:           "5432",
		Database:       "channel_scanner",
		User:           "scanner",
		Password:       "scanner_dev_password",
		MaxConnections: 10,
	}

	db, err := NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
		return nil
	}
	t.Cleanup(db.Close)

	return db
}

// cleanupJob removes a job and its channel rows after a test. Channel tags
// and admins cascade from the channels foreign key.
func cleanupJob(t *testing.T, db *PostgresDB, jobID string) {
	t.Helper()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := db.Pool().Exec(ctx, `DELETE FROM channels WHERE job_id = $1`, jobID); err != nil {
			t.Logf("cleanup channels for %s: %v", jobID, err)
		}
		if _, err := db.Pool().Exec(ctx, `DELETE FROM scan_jobs WHERE job_id = $1`, jobID); err != nil {
			t.Logf("cleanup job %s: %v", jobID, err)
		}
	})
}
