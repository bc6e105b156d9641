package database

import (
	"time"
)

// Analysis represents a persisted analysis result, one row per video.
// Re-analysis replaces the whole row via upsert; no history is retained.
type Analysis struct {
	VideoID         string    `json:"video_id"`
	VideoURL        string    `json:"video_url"`
	Title           string    `json:"title"`
	Analysis        string    `json:"analysis"`
	ChannelID       string    `json:"channel_id"`
	ChannelName     string    `json:"channel_name"`
	PublishedAt     string    `json:"published_at"`
	Duration        int       `json:"video_duration"` // seconds
	TimestampsValid bool      `json:"timestamps_valid"`
	SponsorExcluded bool      `json:"sponsor_excluded"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
	BatchID         string    `json:"batch_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Video represents a discovered video record with its transient analysis status
type Video struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	ChannelName  string    `json:"channel_name"`
	ChannelID    string    `json:"channel_id"`
	Duration     int       `json:"duration"` // seconds
	PublishedAt  string    `json:"published_at"`
	DiscoveredAt time.Time `json:"discovered_at"`
	Analyzed     bool      `json:"analyzed"`
	InProgress   bool      `json:"in_progress"`
	Excluded     bool      `json:"excluded_from_analysis"`
}

// AnalysesPage is one page of analyses with pagination metadata
type AnalysesPage struct {
	Analyses   []Analysis `json:"analyses"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}
