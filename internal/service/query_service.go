package service

import (
	"context"

	"github.com/channel-scanner/internal/logging"
	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/types"
)

// ChannelReader defines the read-side channel queries used by QueryService
type ChannelReader interface {
	ListViews(ctx context.Context, jobID string, limit int) ([]*models.ChannelView, error)
	CountAll(ctx context.Context) (int64, error)
	SumSubscribers(ctx context.Context) (int64, error)
}

// JobReader defines the read-side job queries used by QueryService
type JobReader interface {
	CountByStatus(ctx context.Context, status types.JobStatus) (int64, error)
	CountDistinctCategories(ctx context.Context) (int64, error)
}

// ViewCache is the cache-aside interface for read views
type ViewCache interface {
	ChannelListKey(jobID string, limit int) string
	StatsKey() string
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}) error
}

// QueryService serves channel list and dashboard statistics views
type QueryService struct {
	channels ChannelReader
	jobs     JobReader
	cache    ViewCache // optional
}

// NewQueryService creates a new query service
func NewQueryService(channels ChannelReader, jobs JobReader, cache ViewCache) *QueryService {
	return &QueryService{
		channels: channels,
		jobs:     jobs,
		cache:    cache,
	}
}

// DefaultChannelLimit is the channel list page size when no limit is given
const DefaultChannelLimit = 50

// ListChannels returns channel views ordered by subscriber count descending.
// An empty jobID means all jobs; limit zero yields an empty list; a negative
// limit falls back to the default.
func (s *QueryService) ListChannels(ctx context.Context, jobID string, limit int) ([]*models.ChannelView, error) {
	if limit < 0 {
		limit = DefaultChannelLimit
	}
	if limit == 0 {
		return []*models.ChannelView{}, nil
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.ChannelListKey(jobID, limit)
		var cached []*models.ChannelView
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	views, err := s.channels.ListViews(ctx, jobID, limit)
	if err != nil {
		return nil, types.NewStoreError("list channels", err)
	}
	if views == nil {
		views = []*models.ChannelView{}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, views); err != nil {
			logging.GetGlobalLogger().WithError(err).Warn("Failed to cache channel list")
		}
	}

	return views, nil
}

// Statistics is the dashboard statistics snapshot. The four counters are
// independent point-in-time reads; slight staleness between them is accepted.
type Statistics struct {
	TotalChannels     int64 `json:"totalChannels"`
	TotalSubscribers  int64 `json:"totalSubscribers"`
	CategoriesScanned int64 `json:"categoriesScanned"`
	ActiveScans       int64 `json:"activeScans"`
}

// GetStatistics aggregates the dashboard counters
func (s *QueryService) GetStatistics(ctx context.Context) (*Statistics, error) {
	if s.cache != nil {
		var cached Statistics
		if err := s.cache.GetJSON(ctx, s.cache.StatsKey(), &cached); err == nil {
			return &cached, nil
		}
	}

	totalChannels, err := s.channels.CountAll(ctx)
	if err != nil {
		return nil, types.NewStoreError("count channels", err)
	}

	totalSubscribers, err := s.channels.SumSubscribers(ctx)
	if err != nil {
		return nil, types.NewStoreError("sum subscribers", err)
	}

	categories, err := s.jobs.CountDistinctCategories(ctx)
	if err != nil {
		return nil, types.NewStoreError("count categories", err)
	}

	active, err := s.jobs.CountByStatus(ctx, types.JobStatusRunning)
	if err != nil {
		return nil, types.NewStoreError("count active scans", err)
	}

	stats := &Statistics{
		TotalChannels:     totalChannels,
		TotalSubscribers:  totalSubscribers,
		CategoriesScanned: categories,
		ActiveScans:       active,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, s.cache.StatsKey(), stats); err != nil {
			logging.GetGlobalLogger().WithError(err).Warn("Failed to cache statistics")
		}
	}

	return stats, nil
}
