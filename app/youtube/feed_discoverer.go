package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/podlens/podlens/app/config"
)

// FeedDiscoverer lists recent channel videos from YouTube's public Atom
// feeds. It needs no API key, but the feeds carry no duration information,
// so durations are left at 0 and resolved later by the analysis provider.
type FeedDiscoverer struct {
	parser *gofeed.Parser
}

func NewFeedDiscoverer() *FeedDiscoverer {
	return &FeedDiscoverer{parser: gofeed.NewParser()}
}

func channelFeedURL(channelID string) string {
	return fmt.Sprintf("https://www.youtube.com/feeds/videos.xml?channel_id=%s", channelID)
}

func (d *FeedDiscoverer) RecentVideos(ctx context.Context, channels []config.Channel, daysBack int) ([]Video, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	var videos []Video
	for _, channel := range channels {
		feed, err := d.parser.ParseURLWithContext(channelFeedURL(channel.ChannelID), ctx)
		if err != nil {
			slog.Warn("Channel feed fetch failed, skipping", "channel", channel.Name, "error", err)
			continue
		}

		for _, entry := range feed.Items {
			if entry.PublishedParsed == nil || entry.PublishedParsed.Before(cutoff) {
				continue
			}
			if video := videoFromEntry(channel, entry); video != nil {
				videos = append(videos, *video)
			}
		}
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].PublishedAt > videos[j].PublishedAt
	})

	return videos, nil
}

// videoFromEntry maps one feed entry to a Video. The video ID comes from the
// yt:videoId extension, falling back to parsing the entry link.
func videoFromEntry(channel config.Channel, entry *gofeed.Item) *Video {
	videoID := ""
	if yt, ok := entry.Extensions["yt"]; ok {
		if ids, ok := yt["videoId"]; ok && len(ids) > 0 {
			videoID = ids[0].Value
		}
	}
	if videoID == "" && entry.Link != "" {
		if id := ExtractVideoID(entry.Link); id != entry.Link {
			videoID = id
		}
	}
	if videoID == "" {
		return nil
	}

	publishedAt := ""
	if entry.PublishedParsed != nil {
		publishedAt = entry.PublishedParsed.UTC().Format(time.RFC3339)
	}

	return &Video{
		VideoID:     videoID,
		Title:       entry.Title,
		URL:         WatchURL(videoID),
		ChannelID:   channel.ChannelID,
		ChannelName: channel.Name,
		PublishedAt: publishedAt,
	}
}
