package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/podlens/podlens/app/youtube"
)

func TestDiscoverPersistsWithoutAnalyzing(t *testing.T) {
	items := testVideos(3)
	videos := newMockVideoRepo()
	provider := newFixtureProvider()

	analyzer := newTestAnalyzer(newMockAnalysisRepo(), videos, provider,
		&fixtureDiscoverer{videos: items}, nil, Options{})

	found, err := analyzer.Discover(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}

	if len(found) != 3 {
		t.Fatalf("Expected 3 discovered videos, got %d", len(found))
	}
	if provider.callCount() != 0 {
		t.Errorf("Discovery must not trigger analysis, got %d provider calls", provider.callCount())
	}
	for i := range items {
		stored, err := videos.GetVideo(items[i].VideoID)
		if err != nil {
			t.Fatal(err)
		}
		if stored == nil {
			t.Errorf("Expected %s to be persisted", items[i].VideoID)
		}
	}
}

func TestDiscoverReportsAnalyzedState(t *testing.T) {
	items := testVideos(2)
	videos := newMockVideoRepo()
	if err := videos.UpsertVideo(discoveredVideo(&items[0])); err != nil {
		t.Fatal(err)
	}
	if err := videos.MarkAnalyzed(items[0].VideoID); err != nil {
		t.Fatal(err)
	}

	analyzer := newTestAnalyzer(newMockAnalysisRepo(), videos, newFixtureProvider(),
		&fixtureDiscoverer{videos: items}, nil, Options{})

	found, err := analyzer.Discover(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}

	if !found[0].Analyzed {
		t.Error("Expected previously analyzed video to report analyzed")
	}
	if found[1].Analyzed {
		t.Error("Expected new video to report unanalyzed")
	}
}

func TestDiscoverNoChannels(t *testing.T) {
	analyzer := NewAnalyzer(newMockAnalysisRepo(), newMockVideoRepo(), newFixtureProvider(),
		&fixtureDiscoverer{}, nil, NewProgressTracker(), nil, Options{})

	if _, err := analyzer.Discover(context.Background(), 7); !errors.Is(err, ErrNoChannels) {
		t.Errorf("Expected ErrNoChannels, got %v", err)
	}
}

func TestAnalyzeSingleNewVideo(t *testing.T) {
	items := testVideos(1)
	metadata := &fixtureMetadata{videos: map[string]youtube.Video{items[0].URL: items[0]}}
	analyses := newMockAnalysisRepo()
	videos := newMockVideoRepo()

	analyzer := newTestAnalyzer(analyses, videos, newFixtureProvider(),
		&fixtureDiscoverer{}, metadata, Options{})

	record, existing, err := analyzer.AnalyzeSingle(context.Background(), items[0].URL)
	if err != nil {
		t.Fatal(err)
	}
	if existing {
		t.Error("Expected a fresh analysis, not an existing record")
	}
	if record == nil || !record.Success {
		t.Errorf("Expected successful record, got %+v", record)
	}
	if analyses.count() != 1 {
		t.Errorf("Expected 1 stored analysis, got %d", analyses.count())
	}

	stored, _ := videos.GetVideo(items[0].VideoID)
	if stored == nil || !stored.Analyzed {
		t.Error("Expected video persisted and marked analyzed")
	}
}

func TestAnalyzeSingleReturnsExistingRecord(t *testing.T) {
	items := testVideos(1)
	metadata := &fixtureMetadata{videos: map[string]youtube.Video{items[0].URL: items[0]}}
	analyses := newMockAnalysisRepo()
	analyses.analyses[items[0].VideoID] = *buildAnalysis(&items[0], successResult(), "old-batch")

	provider := newFixtureProvider()
	analyzer := newTestAnalyzer(analyses, newMockVideoRepo(), provider,
		&fixtureDiscoverer{}, metadata, Options{})

	record, existing, err := analyzer.AnalyzeSingle(context.Background(), items[0].URL)
	if err != nil {
		t.Fatal(err)
	}
	if !existing {
		t.Error("Expected existing record to be reported")
	}
	if record.BatchID != "old-batch" {
		t.Errorf("Expected stored record returned, got %+v", record)
	}
	if provider.callCount() != 0 {
		t.Errorf("Provider must not be called for an existing record, got %d calls", provider.callCount())
	}
}

func TestAnalyzeSingleWithoutMetadataProvider(t *testing.T) {
	analyzer := newTestAnalyzer(newMockAnalysisRepo(), newMockVideoRepo(), newFixtureProvider(),
		&fixtureDiscoverer{}, nil, Options{})

	_, _, err := analyzer.AnalyzeSingle(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, ErrNoMetadataProvider) {
		t.Errorf("Expected ErrNoMetadataProvider, got %v", err)
	}
}
