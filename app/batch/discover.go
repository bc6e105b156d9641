package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/podlens/podlens/app/database"
)

// Discover runs channel discovery without scheduling any analysis. Found
// videos are persisted and returned with their stored analyzed state, so
// callers can see what a subsequent batch would pick up.
func (a *Analyzer) Discover(ctx context.Context, daysBack int) ([]database.Video, error) {
	if daysBack <= 0 {
		daysBack = a.daysBack
	}
	if len(a.channels) == 0 {
		return nil, ErrNoChannels
	}

	found, err := a.discoverer.RecentVideos(ctx, a.channels, daysBack)
	if err != nil {
		return nil, fmt.Errorf("video discovery failed: %w", err)
	}

	videos := make([]database.Video, 0, len(found))
	for i := range found {
		if err := a.videos.UpsertVideo(discoveredVideo(&found[i])); err != nil {
			slog.Warn("Failed to persist discovered video", "video_id", found[i].VideoID, "error", err)
		}

		stored, err := a.videos.GetVideo(found[i].VideoID)
		if err == nil && stored != nil {
			videos = append(videos, *stored)
			continue
		}
		videos = append(videos, *discoveredVideo(&found[i]))
	}

	slog.Info("Discovery completed", "days_back", daysBack, "found", len(videos))
	return videos, nil
}

// AnalyzeSingle analyzes one video by URL outside any batch. If a stored
// record already exists it is returned as-is; the second return reports
// whether the record was already present.
func (a *Analyzer) AnalyzeSingle(ctx context.Context, videoURL string) (*database.Analysis, bool, error) {
	if a.metadata == nil {
		return nil, false, ErrNoMetadataProvider
	}

	info, err := a.metadata.VideoInfo(ctx, videoURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve video metadata: %w", err)
	}

	existing, err := a.analyses.GetAnalysis(info.VideoID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up analysis: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	if err := a.videos.UpsertVideo(discoveredVideo(info)); err != nil {
		slog.Warn("Failed to persist discovered video", "video_id", info.VideoID, "error", err)
	}

	slog.Info("Analyzing video", "video_id", info.VideoID, "title", info.Title)

	result, err := a.provider.Analyze(ctx, info.URL, info.Duration)
	if err != nil {
		return nil, false, fmt.Errorf("analysis failed: %w", err)
	}

	record := buildAnalysis(info, result, "")
	if err := a.analyses.UpsertAnalysis(record); err != nil {
		return nil, false, fmt.Errorf("failed to save analysis: %w", err)
	}

	if err := a.videos.MarkAnalyzed(info.VideoID); err != nil {
		slog.Warn("Failed to mark video analyzed", "video_id", info.VideoID, "error", err)
	}

	return record, false, nil
}
