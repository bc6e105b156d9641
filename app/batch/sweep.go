package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/podlens/podlens/app/database"
	"github.com/podlens/podlens/app/youtube"
)

// ErrAnalysisNotFound means re-analysis was requested for a video without a
// stored analysis
var ErrAnalysisNotFound = errors.New("analysis not found")

// ReanalyzeVideo re-runs analysis for one video that already has a stored
// record, replacing the record in place. Metadata resolution failure is
// terminal for this call.
func (a *Analyzer) ReanalyzeVideo(ctx context.Context, videoID string) (*database.Analysis, error) {
	existing, err := a.analyses.GetAnalysis(videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up analysis: %w", err)
	}
	if existing == nil {
		return nil, ErrAnalysisNotFound
	}
	if a.metadata == nil {
		return nil, ErrNoMetadataProvider
	}

	info, err := a.metadata.VideoInfo(ctx, existing.VideoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video metadata: %w", err)
	}

	slog.Info("Re-analyzing video", "video_id", videoID, "title", info.Title)

	result, err := a.provider.Analyze(ctx, info.URL, info.Duration)
	if err != nil {
		return nil, fmt.Errorf("re-analysis failed: %w", err)
	}

	record := buildAnalysis(info, result, "")
	if err := a.analyses.UpsertAnalysis(record); err != nil {
		return nil, fmt.Errorf("failed to save re-analysis: %w", err)
	}

	if err := a.videos.MarkAnalyzed(videoID); err != nil {
		slog.Warn("Failed to mark video analyzed", "video_id", videoID, "error", err)
	}

	return record, nil
}

// ReanalyzeFailed re-attempts every stored analysis with success = false.
// The sweep is deliberately serial: a provider already producing failures
// should not be hit with pooled load. Per-video failures are reported
// without aborting the sweep.
func (a *Analyzer) ReanalyzeFailed(ctx context.Context) (*SweepReport, error) {
	failed, err := a.analyses.GetFailedAnalyses()
	if err != nil {
		return nil, fmt.Errorf("failed to list failed analyses: %w", err)
	}

	report := &SweepReport{TotalFailed: len(failed)}

	slog.Info("Re-analyzing failed videos", "count", len(failed))

	for i := range failed {
		record := &failed[i]
		result := a.reattempt(ctx, record)
		report.Results = append(report.Results, result)
		if result.Status == StatusSuccess {
			report.Reanalyzed++
		} else {
			report.StillFailed++
		}

		if a.dispatchDelay > 0 && i < len(failed)-1 {
			time.Sleep(a.dispatchDelay)
		}
	}

	return report, nil
}

func (a *Analyzer) reattempt(ctx context.Context, existing *database.Analysis) ItemResult {
	result, err := a.provider.Analyze(ctx, existing.VideoURL, existing.Duration)
	if err != nil {
		slog.Error("Re-analysis failed", "video_id", existing.VideoID, "error", err)
		return ItemResult{VideoID: existing.VideoID, Title: existing.Title, Status: StatusError, Error: err.Error()}
	}

	record := buildAnalysis(&youtube.Video{
		VideoID:     existing.VideoID,
		Title:       existing.Title,
		URL:         existing.VideoURL,
		ChannelID:   existing.ChannelID,
		ChannelName: existing.ChannelName,
		PublishedAt: existing.PublishedAt,
		Duration:    existing.Duration,
	}, result, existing.BatchID)

	if err := a.analyses.UpsertAnalysis(record); err != nil {
		slog.Error("Failed to save re-analysis", "video_id", existing.VideoID, "error", err)
		return ItemResult{VideoID: existing.VideoID, Title: existing.Title, Status: StatusSaveFailed}
	}

	if !result.Success {
		return ItemResult{VideoID: existing.VideoID, Title: existing.Title, Status: StatusError, Error: record.Error}
	}

	if err := a.videos.MarkAnalyzed(existing.VideoID); err != nil {
		slog.Warn("Failed to mark video analyzed", "video_id", existing.VideoID, "error", err)
	}

	return ItemResult{VideoID: existing.VideoID, Title: existing.Title, Status: StatusSuccess, Analyzed: true}
}

// AnalyzeUnanalyzed runs the unattended sweep over discovered videos that
// have no stored analysis yet. This legacy path is serial by design.
func (a *Analyzer) AnalyzeUnanalyzed(ctx context.Context) (*Report, error) {
	unanalyzed, err := a.videos.GetUnanalyzedVideos()
	if err != nil {
		return nil, fmt.Errorf("failed to list unanalyzed videos: %w", err)
	}

	batchID := uuid.NewString()
	report := &Report{
		BatchID:     batchID,
		StartedAt:   time.Now().UTC(),
		TotalVideos: len(unanalyzed),
	}

	slog.Info("Analyzing unanalyzed videos", "count", len(unanalyzed), "batch_id", batchID)

	for i, video := range unanalyzed {
		item := youtube.Video{
			VideoID:     video.VideoID,
			Title:       video.Title,
			URL:         video.URL,
			ChannelID:   video.ChannelID,
			ChannelName: video.ChannelName,
			PublishedAt: video.PublishedAt,
			Duration:    video.Duration,
		}

		result, err := a.provider.Analyze(ctx, item.URL, item.Duration)
		if err != nil {
			report.Failed++
			report.Videos = append(report.Videos, ItemResult{
				VideoID: item.VideoID, Title: item.Title, Status: StatusError, Error: err.Error(),
			})
			continue
		}

		record := buildAnalysis(&item, result, batchID)
		if err := a.analyses.UpsertAnalysis(record); err != nil {
			report.Failed++
			report.Videos = append(report.Videos, ItemResult{
				VideoID: item.VideoID, Title: item.Title, Status: StatusSaveFailed,
			})
			continue
		}

		if err := a.videos.MarkAnalyzed(item.VideoID); err != nil {
			slog.Warn("Failed to mark video analyzed", "video_id", item.VideoID, "error", err)
		}

		report.Analyzed++
		report.Videos = append(report.Videos, ItemResult{
			VideoID: item.VideoID, Title: item.Title, Status: StatusSuccess, Analyzed: true,
		})

		if a.dispatchDelay > 0 && i < len(unanalyzed)-1 {
			time.Sleep(a.dispatchDelay)
		}
	}

	report.CompletedAt = time.Now().UTC()
	return report, nil
}
