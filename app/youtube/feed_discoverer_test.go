package youtube

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/podlens/podlens/app/config"
)

func TestVideoFromEntryUsesExtension(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	channel := config.Channel{ChannelID: "UCabc123", Name: "Macro Voices"}

	entry := &gofeed.Item{
		Title:           "Episode 42",
		Link:            "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		PublishedParsed: &published,
		Extensions: ext.Extensions{
			"yt": {
				"videoId": []ext.Extension{{Name: "videoId", Value: "dQw4w9WgXcQ"}},
			},
		},
	}

	video := videoFromEntry(channel, entry)
	if video == nil {
		t.Fatal("Expected video, got nil")
	}
	if video.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("Unexpected video ID: %s", video.VideoID)
	}
	if video.ChannelName != "Macro Voices" {
		t.Errorf("Expected configured channel name, got %s", video.ChannelName)
	}
	if video.Duration != 0 {
		t.Errorf("Feed entries carry no duration, got %d", video.Duration)
	}
	if video.PublishedAt != "2024-03-01T12:00:00Z" {
		t.Errorf("Unexpected published_at: %s", video.PublishedAt)
	}
}

func TestVideoFromEntryFallsBackToLink(t *testing.T) {
	channel := config.Channel{ChannelID: "UCabc123", Name: "Macro Voices"}

	entry := &gofeed.Item{
		Title: "Episode 43",
		Link:  "https://www.youtube.com/watch?v=abc123xyz",
	}

	video := videoFromEntry(channel, entry)
	if video == nil {
		t.Fatal("Expected video, got nil")
	}
	if video.VideoID != "abc123xyz" {
		t.Errorf("Unexpected video ID: %s", video.VideoID)
	}
}

func TestVideoFromEntryNoID(t *testing.T) {
	channel := config.Channel{ChannelID: "UCabc123", Name: "Macro Voices"}

	entry := &gofeed.Item{Title: "No link"}

	if video := videoFromEntry(channel, entry); video != nil {
		t.Errorf("Expected nil for entry without a resolvable video ID, got %+v", video)
	}
}
