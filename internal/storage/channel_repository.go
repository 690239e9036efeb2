package storage

import (
	"context"
	"fmt"

	"github.com/channel-scanner/internal/models"
)

// ChannelRepository handles channel, tag and admin persistence
type ChannelRepository struct {
	db *PostgresDB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *PostgresDB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Upsert persists a channel with its tags and optional admin in one
// transaction. The channel row goes first so its generated key is available
// for the tag and admin rows. Keyed on (job_id, channel_id): re-ingesting the
// same batch refreshes metadata instead of duplicating rows.
func (r *ChannelRepository) Upsert(ctx context.Context, channel *models.Channel, tags []string, admin string) (int64, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin channel upsert: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck // no-op after commit

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO channels (job_id, channel_id, title, link, description, subscribers, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (job_id, channel_id) DO UPDATE
		SET title = EXCLUDED.title,
		    link = EXCLUDED.link,
		    description = EXCLUDED.description,
		    subscribers = EXCLUDED.subscribers,
		    verified = EXCLUDED.verified
		RETURNING id
	`,
		channel.JobID,
		channel.ChannelID,
		channel.Title,
		channel.Link,
		channel.Description,
		channel.Subscribers,
		channel.Verified,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert channel: %w", err)
	}

	for _, tag := range tags {
		if tag == "" {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO channel_tags (channel_id, tag)
			VALUES ($1, $2)
			ON CONFLICT (channel_id, tag) DO NOTHING
		`, id, tag)
		if err != nil {
			return 0, fmt.Errorf("failed to insert channel tag: %w", err)
		}
	}

	if admin != "" {
		_, err = tx.Exec(ctx, `
			INSERT INTO channel_admins (channel_id, admin_name)
			VALUES ($1, $2)
			ON CONFLICT (channel_id) DO UPDATE SET admin_name = EXCLUDED.admin_name
		`, id, admin)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert channel admin: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit channel upsert: %w", err)
	}

	channel.ID = id
	return id, nil
}

// ListViews retrieves channel views with aggregated distinct tags and the
// admin name, ordered by subscriber count descending. An empty jobID means
// all jobs. Tags come back as an empty array, never NULL.
func (r *ChannelRepository) ListViews(ctx context.Context, jobID string, limit int) ([]*models.ChannelView, error) {
	query := `
		SELECT
			c.id::TEXT,
			c.title,
			c.link,
			c.subscribers,
			c.verified,
			COALESCE(
				ARRAY_AGG(DISTINCT ct.tag) FILTER (WHERE ct.tag IS NOT NULL),
				ARRAY[]::VARCHAR[]
			) AS tags,
			COALESCE(ca.admin_name, '') AS admin
		FROM channels c
		LEFT JOIN channel_tags ct ON c.id = ct.channel_id
		LEFT JOIN channel_admins ca ON c.id = ca.channel_id
	`

	args := []interface{}{limit}
	if jobID != "" {
		query += ` WHERE c.job_id = $2`
		args = append(args, jobID)
	}
	query += `
		GROUP BY c.id, ca.admin_name
		ORDER BY c.subscribers DESC
		LIMIT $1
	`

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var views []*models.ChannelView
	for rows.Next() {
		var view models.ChannelView
		err := rows.Scan(
			&view.ID,
			&view.Title,
			&view.Link,
			&view.Subscribers,
			&view.Verified,
			&view.Tags,
			&view.Admin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}

		if view.Tags == nil {
			view.Tags = []string{}
		}

		views = append(views, &view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}

	return views, nil
}

// CountByJob counts channel rows persisted for a job
func (r *ChannelRepository) CountByJob(ctx context.Context, jobID string) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM channels WHERE job_id = $1`, jobID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels for job: %w", err)
	}
	return count, nil
}

// CountAll counts all channel rows
func (r *ChannelRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM channels`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels: %w", err)
	}
	return count, nil
}

// SumSubscribers sums subscriber counts across all channels, zero if none
func (r *ChannelRepository) SumSubscribers(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COALESCE(SUM(subscribers), 0) FROM channels`,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum channel subscribers: %w", err)
	}
	return sum, nil
}
