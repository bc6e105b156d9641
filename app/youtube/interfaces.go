package youtube

import (
	"context"

	"github.com/podlens/podlens/app/config"
)

// Discoverer lists recent videos from a set of trusted channels.
// Implementations are injected at construction; the batch analyzer never
// cares which discovery strategy is behind it.
type Discoverer interface {
	RecentVideos(ctx context.Context, channels []config.Channel, daysBack int) ([]Video, error)
}

// MetadataProvider resolves a single video URL to its metadata
type MetadataProvider interface {
	VideoInfo(ctx context.Context, videoURL string) (*Video, error)
}

var _ Discoverer = (*Client)(nil)
var _ MetadataProvider = (*Client)(nil)
var _ Discoverer = (*FeedDiscoverer)(nil)
