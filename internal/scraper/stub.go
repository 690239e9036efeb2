package scraper

import (
	"context"
	"fmt"
)

// StubSource is a placeholder ChannelSource returning fixed channels.
// It stands in for the TGStat scraper until the real integration lands.
type StubSource struct{}

// NewStubSource creates a stub channel source
func NewStubSource() *StubSource {
	return &StubSource{}
}

// Discover returns two fixed placeholder channels titled after the category or tag.
func (s *StubSource) Discover(ctx context.Context, category, tag string) ([]DiscoveredChannel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subject := category
	if subject == "" {
		subject = tag
	}

	return []DiscoveredChannel{
		{
			Title:       fmt.Sprintf("%s Channel 1", subject),
			Link:        "https://t.me/example1",
			Description: "Example channel for testing",
			Subscribers: 125000,
			Verified:    true,
			Tags:        []string{"маркетинг", "реклама"},
		},
		{
			Title:       fmt.Sprintf("%s Channel 2", subject),
			Link:        "https://t.me/example2",
			Description: "Another test channel",
			Subscribers: 89000,
			Verified:    true,
			Tags:        []string{"бизнес", "smm"},
		},
	}, nil
}
