package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/podlens/podlens/app/config"
)

// ErrQuotaExceeded signals that the YouTube Data API rejected a request due
// to quota exhaustion. Surfaced to the caller as a distinct, user-actionable
// condition instead of being retried.
var ErrQuotaExceeded = errors.New("youtube api quota exceeded")

const searchPageSize = 50

// Client discovers videos and resolves metadata via the YouTube Data API v3
type Client struct {
	service *youtube.Service
	// Videos shorter than this are flagged as excluded from analysis
	minVideoSeconds int
}

func NewClient(ctx context.Context, apiKey string, minVideoSeconds int) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &Client{
		service:         service,
		minVideoSeconds: minVideoSeconds,
	}, nil
}

// VideoInfo resolves a video URL (or bare video ID) to its metadata
func (c *Client) VideoInfo(ctx context.Context, videoURL string) (*Video, error) {
	videoID := ExtractVideoID(videoURL)

	response, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("failed to get video info", err)
	}

	if len(response.Items) == 0 {
		return nil, fmt.Errorf("video not found: %s", videoID)
	}

	return c.buildVideo(response.Items[0]), nil
}

// RecentVideos lists videos published within the last daysBack days across
// the given channels, newest first. Per-channel failures are logged and
// skipped; quota exhaustion aborts discovery.
func (c *Client) RecentVideos(ctx context.Context, channels []config.Channel, daysBack int) ([]Video, error) {
	publishedAfter := time.Now().UTC().AddDate(0, 0, -daysBack).Format(time.RFC3339)

	var videos []Video
	for _, channel := range channels {
		ids, err := c.searchChannel(ctx, channel.ChannelID, publishedAfter)
		if err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				return nil, err
			}
			slog.Warn("Channel discovery failed, skipping", "channel", channel.Name, "error", err)
			continue
		}
		if len(ids) == 0 {
			continue
		}

		details, err := c.videoDetails(ctx, ids)
		if err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				return nil, err
			}
			slog.Warn("Video detail lookup failed, skipping channel", "channel", channel.Name, "error", err)
			continue
		}

		for _, video := range details {
			// Override with the configured friendly name
			video.ChannelName = channel.Name
			video.ChannelID = channel.ChannelID
			videos = append(videos, video)
		}
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].PublishedAt > videos[j].PublishedAt
	})

	return videos, nil
}

func (c *Client) searchChannel(ctx context.Context, channelID, publishedAfter string) ([]string, error) {
	response, err := c.service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Type("video").
		Order("date").
		PublishedAfter(publishedAfter).
		MaxResults(searchPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("search failed", err)
	}

	var ids []string
	for _, item := range response.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}

	return ids, nil
}

func (c *Client) videoDetails(ctx context.Context, videoIDs []string) ([]Video, error) {
	var videos []Video

	for start := 0; start < len(videoIDs); start += searchPageSize {
		end := start + searchPageSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		response, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).
			Id(strings.Join(videoIDs[start:end], ",")).
			Context(ctx).
			Do()
		if err != nil {
			return nil, wrapAPIError("video details lookup failed", err)
		}

		for _, item := range response.Items {
			videos = append(videos, *c.buildVideo(item))
		}
	}

	return videos, nil
}

func (c *Client) buildVideo(item *youtube.Video) *Video {
	duration := 0
	if item.ContentDetails != nil {
		duration = parseDurationSeconds(item.ContentDetails.Duration)
	}

	video := &Video{
		VideoID:  item.Id,
		URL:      WatchURL(item.Id),
		Duration: duration,
		Excluded: c.shouldExclude(duration),
	}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.ChannelID = item.Snippet.ChannelId
		video.ChannelName = item.Snippet.ChannelTitle
		video.PublishedAt = item.Snippet.PublishedAt
	}

	return video
}

// shouldExclude reports whether a video is too short to be worth analyzing.
// Unknown durations are never excluded.
func (c *Client) shouldExclude(durationSeconds int) bool {
	return durationSeconds > 0 && durationSeconds < c.minVideoSeconds
}

func wrapAPIError(msg string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		for _, e := range apiErr.Errors {
			if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" {
				return fmt.Errorf("%s: %w", msg, ErrQuotaExceeded)
			}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
