package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/podlens/podlens/app/analysis"
	"github.com/podlens/podlens/app/config"
	"github.com/podlens/podlens/app/database"
	"github.com/podlens/podlens/app/youtube"
)

// DefaultWorkers bounds concurrent analysis calls in the primary batch path
const DefaultWorkers = 8

var (
	// ErrNoChannels means discovery cannot run because no channels are configured
	ErrNoChannels = errors.New("no channels configured")
	// ErrNoMetadataProvider means explicit-URL scheduling and re-analysis are
	// unavailable in the current configuration
	ErrNoMetadataProvider = errors.New("metadata provider not configured")
)

// Options tunes the batch analyzer. A zero DispatchDelay disables pacing,
// which fixture-backed runs rely on.
type Options struct {
	Workers       int
	DispatchDelay time.Duration
	DaysBack      int
}

// Analyzer coordinates batch analysis: discovery, dedup, bounded-concurrency
// dispatch, progress tracking and result aggregation. All collaborators are
// injected at construction.
type Analyzer struct {
	analyses   database.AnalysisRepository
	videos     database.VideoRepository
	provider   analysis.Provider
	discoverer youtube.Discoverer
	metadata   youtube.MetadataProvider // may be nil
	tracker    *ProgressTracker
	channels   []config.Channel

	workers       int
	dispatchDelay time.Duration
	daysBack      int
}

func NewAnalyzer(analyses database.AnalysisRepository, videos database.VideoRepository,
	provider analysis.Provider, discoverer youtube.Discoverer, metadata youtube.MetadataProvider,
	tracker *ProgressTracker, channels []config.Channel, opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = 7
	}

	return &Analyzer{
		analyses:      analyses,
		videos:        videos,
		provider:      provider,
		discoverer:    discoverer,
		metadata:      metadata,
		tracker:       tracker,
		channels:      channels,
		workers:       opts.Workers,
		dispatchDelay: opts.DispatchDelay,
		daysBack:      opts.DaysBack,
	}
}

// Progress returns the live snapshot for a batch
func (a *Analyzer) Progress(batchID string) (Progress, bool) {
	return a.tracker.Get(batchID)
}

// AnalyzeRecent discovers videos published within the last daysBack days and
// runs a batch over them. A daysBack of 0 uses the configured default.
// Discovery failure is the only hard failure; per-video outcomes are
// captured in the report.
func (a *Analyzer) AnalyzeRecent(ctx context.Context, daysBack int) (*Report, error) {
	if daysBack <= 0 {
		daysBack = a.daysBack
	}
	if len(a.channels) == 0 {
		return nil, ErrNoChannels
	}

	slog.Info("Discovering videos", "days_back", daysBack, "channels", len(a.channels))

	videos, err := a.discoverer.RecentVideos(ctx, a.channels, daysBack)
	if err != nil {
		return nil, fmt.Errorf("video discovery failed: %w", err)
	}

	slog.Info("Discovery finished", "videos", len(videos))

	return a.runBatch(ctx, videos), nil
}

// AnalyzeVideos runs a batch over an explicit list of video URLs. URLs whose
// metadata cannot be resolved are reported as errors without aborting the
// batch; the report preserves input order.
func (a *Analyzer) AnalyzeVideos(ctx context.Context, videoURLs []string) (*Report, error) {
	if a.metadata == nil {
		return nil, ErrNoMetadataProvider
	}

	items := make([]youtube.Video, 0, len(videoURLs))
	positions := make([]int, 0, len(videoURLs))
	failures := make(map[int]ItemResult)

	for i, url := range videoURLs {
		info, err := a.metadata.VideoInfo(ctx, url)
		if err != nil {
			if errors.Is(err, youtube.ErrQuotaExceeded) {
				return nil, err
			}
			slog.Warn("Metadata lookup failed", "url", url, "error", err)
			failures[i] = ItemResult{
				VideoID: youtube.ExtractVideoID(url),
				Status:  StatusError,
				Error:   fmt.Sprintf("metadata lookup failed: %v", err),
			}
			continue
		}
		items = append(items, *info)
		positions = append(positions, i)
	}

	report := a.runBatch(ctx, items)

	if len(failures) == 0 {
		return report, nil
	}

	merged := make([]ItemResult, len(videoURLs))
	for i, result := range report.Videos {
		merged[positions[i]] = result
	}
	for i, failure := range failures {
		merged[i] = failure
		report.Failed++
	}
	report.Videos = merged
	report.TotalVideos = len(videoURLs)

	return report, nil
}

// runBatch persists discovered videos, then fans the batch out to the worker
// pool and aggregates per-video outcomes. It always returns a report; unit
// failures never escape.
func (a *Analyzer) runBatch(ctx context.Context, items []youtube.Video) *Report {
	batchID := uuid.NewString()
	batchesTotal.Inc()

	report := &Report{
		BatchID:     batchID,
		StartedAt:   time.Now().UTC(),
		TotalVideos: len(items),
		Videos:      make([]ItemResult, len(items)),
	}

	// Discovery is durable even if analysis later fails
	for i := range items {
		if err := a.videos.UpsertVideo(discoveredVideo(&items[i])); err != nil {
			slog.Warn("Failed to save discovered video", "video_id", items[i].VideoID, "error", err)
		}
	}

	a.tracker.Update(batchID, 0, len(items), "", 0)

	state := &batchState{tracker: a.tracker, batchID: batchID, total: len(items)}

	type job struct {
		idx   int
		video youtube.Video
	}

	jobs := make(chan job)
	var wg sync.WaitGroup

	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				report.Videos[j.idx] = a.processVideo(ctx, state, j.video)
			}
		}()
	}

	// Pacing bounds the dispatch rate, not the concurrency: already
	// dispatched units keep running while the next enqueue waits.
	for i, video := range items {
		jobs <- job{idx: i, video: video}
		if a.dispatchDelay > 0 && i < len(items)-1 {
			time.Sleep(a.dispatchDelay)
		}
	}
	close(jobs)
	wg.Wait()

	for _, result := range report.Videos {
		switch result.Status {
		case StatusSuccess:
			report.Analyzed++
		case StatusSaveFailed, StatusError:
			report.Failed++
		}
		analysesTotal.WithLabelValues(string(result.Status)).Inc()
	}

	report.CompletedAt = time.Now().UTC()

	slog.Info("Batch finished", "batch_id", batchID,
		"total", report.TotalVideos, "analyzed", report.Analyzed, "failed", report.Failed,
		"duration", report.CompletedAt.Sub(report.StartedAt))

	return report
}

// processVideo runs one scheduling unit: dedup check, in-progress marking,
// provider call, persistence and progress accounting. The in-progress marker
// is cleared on every exit path.
func (a *Analyzer) processVideo(ctx context.Context, state *batchState, video youtube.Video) ItemResult {
	existing, err := a.analyses.GetAnalysis(video.VideoID)
	if err != nil {
		// Point-in-time check; on lookup failure the video is treated as
		// needing work
		slog.Warn("Dedup lookup failed", "video_id", video.VideoID, "error", err)
	}
	if existing != nil {
		slog.Debug("Skipping already analyzed video", "video_id", video.VideoID, "title", video.Title)
		return ItemResult{VideoID: video.VideoID, Title: video.Title, Status: StatusAlreadyAnalyzed}
	}

	slog.Info("Analyzing video", "video_id", video.VideoID, "title", video.Title)
	state.starting(video.Title)

	if err := a.videos.SetInProgress(video.VideoID, true); err != nil {
		slog.Warn("Failed to mark video in progress", "video_id", video.VideoID, "error", err)
	}

	cleared := false
	clearInProgress := func() {
		if cleared {
			return
		}
		cleared = true
		if err := a.videos.SetInProgress(video.VideoID, false); err != nil {
			slog.Warn("Failed to clear in-progress marker", "video_id", video.VideoID, "error", err)
		}
	}
	defer clearInProgress()

	result, err := a.provider.Analyze(ctx, video.URL, video.Duration)
	if err != nil {
		clearInProgress()
		state.failedOne()
		slog.Error("Video analysis failed", "video_id", video.VideoID, "error", err)
		return ItemResult{VideoID: video.VideoID, Title: video.Title, Status: StatusError, Error: err.Error()}
	}
	if result == nil {
		clearInProgress()
		state.failedOne()
		return ItemResult{VideoID: video.VideoID, Title: video.Title, Status: StatusError, Error: "provider returned no result"}
	}

	record := buildAnalysis(&video, result, state.batchID)
	if err := a.analyses.UpsertAnalysis(record); err != nil {
		clearInProgress()
		state.failedOne()
		slog.Error("Failed to save analysis", "video_id", video.VideoID, "error", err)
		return ItemResult{VideoID: video.VideoID, Title: video.Title, Status: StatusSaveFailed}
	}

	if err := a.videos.MarkAnalyzed(video.VideoID); err != nil {
		slog.Warn("Failed to mark video analyzed", "video_id", video.VideoID, "error", err)
	}

	clearInProgress()
	state.succeeded()

	return ItemResult{VideoID: video.VideoID, Title: video.Title, Status: StatusSuccess, Analyzed: true}
}

// batchState keeps the running totals for one batch. The mutex is held
// through the tracker publish so snapshots reach the tracker in counter
// order and completed never appears to decrease across polls.
type batchState struct {
	tracker *ProgressTracker
	batchID string
	total   int

	mu        sync.Mutex
	completed int
	failed    int
}

func (s *batchState) starting(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Update(s.batchID, s.completed, s.total, title, s.failed)
}

func (s *batchState) succeeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	s.tracker.Update(s.batchID, s.completed, s.total, "", s.failed)
}

func (s *batchState) failedOne() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	s.tracker.Update(s.batchID, s.completed, s.total, "", s.failed)
}

func buildAnalysis(video *youtube.Video, result *analysis.Result, batchID string) *database.Analysis {
	duration := result.Duration
	if duration == 0 {
		duration = video.Duration
	}

	return &database.Analysis{
		VideoID:         video.VideoID,
		VideoURL:        video.URL,
		Title:           video.Title,
		Analysis:        result.Analysis,
		ChannelID:       video.ChannelID,
		ChannelName:     video.ChannelName,
		PublishedAt:     video.PublishedAt,
		Duration:        duration,
		TimestampsValid: result.TimestampsValid,
		SponsorExcluded: result.SponsorExcluded,
		Success:         result.Success,
		Error:           result.Error,
		BatchID:         batchID,
		CreatedAt:       time.Now().UTC(),
	}
}

func discoveredVideo(video *youtube.Video) *database.Video {
	return &database.Video{
		VideoID:     video.VideoID,
		Title:       video.Title,
		URL:         video.URL,
		ChannelName: video.ChannelName,
		ChannelID:   video.ChannelID,
		Duration:    video.Duration,
		PublishedAt: video.PublishedAt,
		Excluded:    video.Excluded,
	}
}
