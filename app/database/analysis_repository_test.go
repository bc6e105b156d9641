package database

import (
	"fmt"
	"testing"
)

func sampleAnalysis(videoID, channelID, publishedAt string, success bool) *Analysis {
	return &Analysis{
		VideoID:     videoID,
		VideoURL:    "https://www.youtube.com/watch?v=" + videoID,
		Title:       "Episode " + videoID,
		Analysis:    "Summary for " + videoID,
		ChannelID:   channelID,
		ChannelName: "Test Channel",
		PublishedAt: publishedAt,
		Duration:    1200,
		Success:     success,
		BatchID:     "batch-1",
	}
}

func TestUpsertAnalysisReplacesRow(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	first := sampleAnalysis("abc", "UCtest", "2024-03-01T12:00:00Z", false)
	first.Error = "content blocked"
	if err := repo.UpsertAnalysis(first); err != nil {
		t.Fatal(err)
	}

	second := sampleAnalysis("abc", "UCtest", "2024-03-01T12:00:00Z", true)
	second.Analysis = "Revised summary"
	second.BatchID = "batch-2"
	if err := repo.UpsertAnalysis(second); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.GetAnalysis("abc")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil {
		t.Fatal("Expected stored analysis")
	}
	if !stored.Success || stored.Analysis != "Revised summary" || stored.BatchID != "batch-2" {
		t.Errorf("Expected full replacement, got %+v", stored)
	}
	if stored.Error != "" {
		t.Errorf("Expected error cleared on replacement, got %q", stored.Error)
	}

	page, err := repo.GetAnalysesPage("", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 1 {
		t.Errorf("Expected a single row after replacement, got %d", page.TotalCount)
	}
}

func TestGetAnalysisAbsent(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	stored, err := repo.GetAnalysis("missing")
	if err != nil {
		t.Fatal(err)
	}
	if stored != nil {
		t.Errorf("Expected nil for absent analysis, got %+v", stored)
	}
}

func TestGetFailedAnalyses(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	for i, success := range []bool{false, true, false} {
		id := fmt.Sprintf("video-%d", i+1)
		if err := repo.UpsertAnalysis(sampleAnalysis(id, "UCtest", "2024-03-01T12:00:00Z", success)); err != nil {
			t.Fatal(err)
		}
	}

	failed, err := repo.GetFailedAnalyses()
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 2 {
		t.Fatalf("Expected 2 failed analyses, got %d", len(failed))
	}
	for _, a := range failed {
		if a.Success {
			t.Errorf("Unexpected successful record %s in failed list", a.VideoID)
		}
	}
}

func TestGetAnalysesPagePagination(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	for i := 0; i < 12; i++ {
		publishedAt := fmt.Sprintf("2024-03-%02dT12:00:00Z", i+1)
		if err := repo.UpsertAnalysis(sampleAnalysis(fmt.Sprintf("video-%02d", i+1), "UCtest", publishedAt, true)); err != nil {
			t.Fatal(err)
		}
	}

	page, err := repo.GetAnalysesPage("", 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Analyses) != 5 || page.TotalCount != 12 || page.TotalPages != 3 {
		t.Errorf("Unexpected first page: %d items, total %d, pages %d",
			len(page.Analyses), page.TotalCount, page.TotalPages)
	}
	if !page.HasNext || page.HasPrev {
		t.Errorf("Expected has_next true, has_prev false, got %t/%t", page.HasNext, page.HasPrev)
	}

	// Newest published first
	if page.Analyses[0].VideoID != "video-12" {
		t.Errorf("Expected newest video first, got %s", page.Analyses[0].VideoID)
	}

	last, err := repo.GetAnalysesPage("", 3, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Analyses) != 2 || last.HasNext || !last.HasPrev {
		t.Errorf("Unexpected last page: %d items, has_next %t, has_prev %t",
			len(last.Analyses), last.HasNext, last.HasPrev)
	}

	beyond, err := repo.GetAnalysesPage("", 99, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond.Analyses) != 0 || beyond.HasNext {
		t.Errorf("Expected empty page beyond the end, got %d items, has_next %t",
			len(beyond.Analyses), beyond.HasNext)
	}
}

func TestGetAnalysesPageClamping(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	page, err := repo.GetAnalysesPage("", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 1 || page.PageSize != DefaultPageSize {
		t.Errorf("Expected page 1 size %d, got %d/%d", DefaultPageSize, page.Page, page.PageSize)
	}

	page, err = repo.GetAnalysesPage("", -5, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 1 || page.PageSize != MaxPageSize {
		t.Errorf("Expected page 1 size %d, got %d/%d", MaxPageSize, page.Page, page.PageSize)
	}
}

func TestGetAnalysesPageUnknownDatesSortLast(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	if err := repo.UpsertAnalysis(sampleAnalysis("undated", "UCtest", "", true)); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertAnalysis(sampleAnalysis("dated", "UCtest", "2024-03-01T12:00:00Z", true)); err != nil {
		t.Fatal(err)
	}

	page, err := repo.GetAnalysesPage("", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Analyses) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(page.Analyses))
	}
	if page.Analyses[0].VideoID != "dated" || page.Analyses[1].VideoID != "undated" {
		t.Errorf("Expected undated record last, got %s, %s",
			page.Analyses[0].VideoID, page.Analyses[1].VideoID)
	}
}

func TestGetAnalysesPageChannelFilter(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	if err := repo.UpsertAnalysis(sampleAnalysis("a", "UCone", "2024-03-01T12:00:00Z", true)); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertAnalysis(sampleAnalysis("b", "UCtwo", "2024-03-02T12:00:00Z", true)); err != nil {
		t.Fatal(err)
	}

	page, err := repo.GetAnalysesPage("UCone", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 1 || len(page.Analyses) != 1 || page.Analyses[0].VideoID != "a" {
		t.Errorf("Unexpected filtered page: %+v", page)
	}
}
