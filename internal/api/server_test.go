package api

import (
	"context"
	"time"

	"github.com/channel-scanner/internal/models"
	"github.com/channel-scanner/internal/service"
	"github.com/channel-scanner/internal/types"
)

// Mock services for testing

type mockScanService struct {
	runScanFunc  func(ctx context.Context, category, tag string) (*service.ScanResult, error)
	listJobsFunc func(ctx context.Context, limit int) ([]service.JobSummary, error)
}

func (m *mockScanService) RunScan(ctx context.Context, category, tag string) (*service.ScanResult, error) {
	if m.runScanFunc != nil {
		return m.runScanFunc(ctx, category, tag)
	}
	return &service.ScanResult{
		JobID:         "job-00000000-0000-0000-0000-000000000001",
		Status:        types.JobStatusCompleted,
		ChannelsFound: 2,
	}, nil
}

func (m *mockScanService) ListRecentJobs(ctx context.Context, limit int) ([]service.JobSummary, error) {
	if m.listJobsFunc != nil {
		return m.listJobsFunc(ctx, limit)
	}
	return []service.JobSummary{}, nil
}

type mockQueryService struct {
	listChannelsFunc func(ctx context.Context, jobID string, limit int) ([]*models.ChannelView, error)
	statisticsFunc   func(ctx context.Context) (*service.Statistics, error)
}

func (m *mockQueryService) ListChannels(ctx context.Context, jobID string, limit int) ([]*models.ChannelView, error) {
	if m.listChannelsFunc != nil {
		return m.listChannelsFunc(ctx, jobID, limit)
	}
	return []*models.ChannelView{}, nil
}

func (m *mockQueryService) GetStatistics(ctx context.Context) (*service.Statistics, error) {
	if m.statisticsFunc != nil {
		return m.statisticsFunc(ctx)
	}
	return &service.Statistics{}, nil
}

// createTestServer builds a server with mock services and a permissive rate limit
func createTestServer() *Server {
	return createTestServerWith(&mockScanService{}, &mockQueryService{})
}

func createTestServerWith(scan ScanServiceInterface, query QueryServiceInterface) *Server {
	cfg := &ServerConfig{
		Host:            "127.0.0.1",
		Port:            "0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	}
	return NewServer(cfg, scan, query)
}
