package batch

import (
	"time"
)

// ItemStatus is the terminal outcome of one scheduled video within a batch
type ItemStatus string

const (
	// StatusAlreadyAnalyzed means the video was skipped because an analysis
	// already exists
	StatusAlreadyAnalyzed ItemStatus = "already_analyzed"
	// StatusSuccess means the analysis was produced and durably saved
	StatusSuccess ItemStatus = "success"
	// StatusSaveFailed means the analysis was produced but could not be saved
	StatusSaveFailed ItemStatus = "save_failed"
	// StatusError means the analysis attempt itself failed
	StatusError ItemStatus = "error"
)

// ItemResult is the per-video outcome reported for a batch
type ItemResult struct {
	VideoID  string     `json:"video_id"`
	Title    string     `json:"title"`
	Status   ItemStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
	Analyzed bool       `json:"analyzed"`
}

// Report is the aggregate outcome of one batch. Videos preserves dispatch
// order regardless of completion order. Analyzed counts successes; Failed
// counts errors and save failures; skipped videos count in neither.
type Report struct {
	BatchID     string       `json:"batch_id"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	TotalVideos int          `json:"total_videos"`
	Analyzed    int          `json:"analyzed"`
	Failed      int          `json:"failed"`
	Videos      []ItemResult `json:"videos"`
}

// SweepReport is the outcome of a re-analysis pass over failed videos
type SweepReport struct {
	TotalFailed int          `json:"total_failed"`
	Reanalyzed  int          `json:"re_analyzed"`
	StillFailed int          `json:"still_failed"`
	Results     []ItemResult `json:"results"`
}
