// Package scraper defines the channel discovery contract and its implementations.
// Real scraping is an external collaborator; the ingestion pipeline only depends
// on the ChannelSource interface defined here.
package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/channel-scanner/internal/types"
)

// DiscoveredChannel is one channel reported by a source for a scan.
type DiscoveredChannel struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Subscribers int64    `json:"subscribers"`
	Verified    bool     `json:"verified"`
	Tags        []string `json:"tags"`
	Admin       string   `json:"admin,omitempty"`
}

// ChannelSource discovers channels for a category and/or tag.
type ChannelSource interface {
	// Discover returns a finite batch of channels matching the category or tag.
	// Implementations must honor ctx cancellation; a network-backed source may
	// take a long time.
	Discover(ctx context.Context, category, tag string) ([]DiscoveredChannel, error)
}

// ChannelIDFromLink derives the external channel identifier from a channel link:
// the last non-empty path segment (e.g. "example1" from "https://t.me/example1").
// A link with an empty path yields an INVALID_CHANNEL error.
func ChannelIDFromLink(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", types.NewInvalidChannelError(link, "unparsable URL")
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", types.NewInvalidChannelError(link, "empty path segment")
	}

	segments := strings.Split(path, "/")
	id := segments[len(segments)-1]
	if id == "" {
		return "", types.NewInvalidChannelError(link, "empty path segment")
	}

	return id, nil
}
