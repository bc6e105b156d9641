package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/podlens/podlens/app/analysis"
	"github.com/podlens/podlens/app/config"
	"github.com/podlens/podlens/app/database"
	"github.com/podlens/podlens/app/youtube"
)

// mockAnalysisRepo implements database.AnalysisRepository in memory
type mockAnalysisRepo struct {
	mu         sync.Mutex
	analyses   map[string]database.Analysis
	failUpsert map[string]bool
}

var _ database.AnalysisRepository = (*mockAnalysisRepo)(nil)

func newMockAnalysisRepo() *mockAnalysisRepo {
	return &mockAnalysisRepo{
		analyses:   make(map[string]database.Analysis),
		failUpsert: make(map[string]bool),
	}
}

func (m *mockAnalysisRepo) GetAnalysis(videoID string) (*database.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.analyses[videoID]; ok {
		copied := a
		return &copied, nil
	}
	return nil, nil
}

func (m *mockAnalysisRepo) GetFailedAnalyses() ([]database.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var failed []database.Analysis
	for _, a := range m.analyses {
		if !a.Success {
			failed = append(failed, a)
		}
	}
	return failed, nil
}

func (m *mockAnalysisRepo) GetRecentAnalyses(days int) ([]database.Analysis, error) {
	return nil, nil
}

func (m *mockAnalysisRepo) GetAnalysesPage(channelID string, page, pageSize int) (*database.AnalysesPage, error) {
	return &database.AnalysesPage{Page: page, PageSize: pageSize}, nil
}

func (m *mockAnalysisRepo) UpsertAnalysis(a *database.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUpsert[a.VideoID] {
		return errors.New("disk full")
	}
	m.analyses[a.VideoID] = *a
	return nil
}

func (m *mockAnalysisRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.analyses)
}

// mockVideoRepo implements database.VideoRepository in memory and records
// every in-progress transition
type mockVideoRepo struct {
	mu            sync.Mutex
	videos        map[string]database.Video
	inProgressLog []string
}

var _ database.VideoRepository = (*mockVideoRepo)(nil)

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{videos: make(map[string]database.Video)}
}

func (m *mockVideoRepo) GetVideo(videoID string) (*database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.videos[videoID]; ok {
		copied := v
		return &copied, nil
	}
	return nil, nil
}

func (m *mockVideoRepo) GetRecentVideos(limit int) ([]database.Video, error) {
	return nil, nil
}

func (m *mockVideoRepo) GetUnanalyzedVideos() ([]database.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unanalyzed []database.Video
	for _, v := range m.videos {
		if !v.Analyzed && !v.Excluded {
			unanalyzed = append(unanalyzed, v)
		}
	}
	return unanalyzed, nil
}

func (m *mockVideoRepo) UpsertVideo(video *database.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.videos[video.VideoID]
	if ok {
		video.Analyzed = existing.Analyzed
		video.InProgress = existing.InProgress
	}
	m.videos[video.VideoID] = *video
	return nil
}

func (m *mockVideoRepo) MarkAnalyzed(videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.videos[videoID]
	v.Analyzed = true
	m.videos[videoID] = v
	return nil
}

func (m *mockVideoRepo) SetInProgress(videoID string, inProgress bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.videos[videoID]
	v.InProgress = inProgress
	m.videos[videoID] = v
	m.inProgressLog = append(m.inProgressLog, fmt.Sprintf("%s=%t", videoID, inProgress))
	return nil
}

func (m *mockVideoRepo) anyInProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.videos {
		if v.InProgress {
			return true
		}
	}
	return false
}

func (m *mockVideoRepo) inProgressTransitions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inProgressLog)
}

// fixtureProvider implements analysis.Provider with scriptable outcomes
type fixtureProvider struct {
	mu      sync.Mutex
	calls   []string
	errFor  map[string]bool // video URL -> Analyze returns an error
	failFor map[string]bool // video URL -> Result with Success false
	onCall  func()
}

var _ analysis.Provider = (*fixtureProvider)(nil)

func newFixtureProvider() *fixtureProvider {
	return &fixtureProvider{
		errFor:  make(map[string]bool),
		failFor: make(map[string]bool),
	}
}

func (p *fixtureProvider) Analyze(ctx context.Context, videoURL string, durationSeconds int) (*analysis.Result, error) {
	p.mu.Lock()
	p.calls = append(p.calls, videoURL)
	onCall := p.onCall
	p.mu.Unlock()

	if onCall != nil {
		onCall()
	}

	if p.errFor[videoURL] {
		return nil, errors.New("model unavailable")
	}
	if p.failFor[videoURL] {
		return &analysis.Result{Success: false, Error: "content blocked"}, nil
	}

	return &analysis.Result{
		Analysis:        "Summary with a key moment at (1:00).",
		Duration:        durationSeconds,
		TimestampsValid: true,
		SponsorExcluded: true,
		Success:         true,
	}, nil
}

func (p *fixtureProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fixtureProvider) calledWith(videoURL string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, call := range p.calls {
		if call == videoURL {
			return true
		}
	}
	return false
}

// fixtureDiscoverer implements youtube.Discoverer with a fixed video list
type fixtureDiscoverer struct {
	videos []youtube.Video
	err    error
}

var _ youtube.Discoverer = (*fixtureDiscoverer)(nil)

func (d *fixtureDiscoverer) RecentVideos(ctx context.Context, channels []config.Channel, daysBack int) ([]youtube.Video, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.videos, nil
}

// fixtureMetadata implements youtube.MetadataProvider backed by a map
type fixtureMetadata struct {
	videos map[string]youtube.Video // keyed by URL
}

var _ youtube.MetadataProvider = (*fixtureMetadata)(nil)

func (m *fixtureMetadata) VideoInfo(ctx context.Context, videoURL string) (*youtube.Video, error) {
	if v, ok := m.videos[videoURL]; ok {
		return &v, nil
	}
	return nil, errors.New("video not found")
}

func testVideos(n int) []youtube.Video {
	videos := make([]youtube.Video, n)
	for i := range videos {
		id := fmt.Sprintf("video-%d", i+1)
		videos[i] = youtube.Video{
			VideoID:     id,
			Title:       fmt.Sprintf("Episode %d", i+1),
			URL:         youtube.WatchURL(id),
			ChannelID:   "UCtest",
			ChannelName: "Test Channel",
			PublishedAt: "2024-03-01T12:00:00Z",
			Duration:    1200,
		}
	}
	return videos
}

func testChannels() []config.Channel {
	return []config.Channel{{ChannelID: "UCtest", Name: "Test Channel"}}
}

func successResult() *analysis.Result {
	return &analysis.Result{
		Analysis:        "Summary with a key moment at (1:00).",
		Duration:        1200,
		TimestampsValid: true,
		SponsorExcluded: true,
		Success:         true,
	}
}
