package api

import (
	"context"

	"github.com/podlens/podlens/app/batch"
	"github.com/podlens/podlens/app/database"
)

type BatchAnalyzerInterface interface {
	Discover(ctx context.Context, daysBack int) ([]database.Video, error)
	AnalyzeRecent(ctx context.Context, daysBack int) (*batch.Report, error)
	AnalyzeVideos(ctx context.Context, videoURLs []string) (*batch.Report, error)
	AnalyzeSingle(ctx context.Context, videoURL string) (*database.Analysis, bool, error)
	ReanalyzeVideo(ctx context.Context, videoID string) (*database.Analysis, error)
	ReanalyzeFailed(ctx context.Context) (*batch.SweepReport, error)
	AnalyzeUnanalyzed(ctx context.Context) (*batch.Report, error)
	Progress(batchID string) (batch.Progress, bool)
}

var _ BatchAnalyzerInterface = (*batch.Analyzer)(nil)

type Handler struct {
	analyzer     BatchAnalyzerInterface
	analysisRepo database.AnalysisRepository
	videoRepo    database.VideoRepository
}

type BatchAnalyzeRequest struct {
	DaysBack int `json:"days_back"`
}

type BatchVideosRequest struct {
	VideoURLs []string `json:"video_urls"`
}

type AnalyzeRequest struct {
	VideoURL string `json:"video_url"`
}
