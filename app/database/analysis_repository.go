package database

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type analysisRepository struct {
	db *DB
}

func NewAnalysisRepository(db *DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

const analysisColumns = `video_id, video_url, title, analysis, COALESCE(channel_id, ''),
	COALESCE(channel_name, ''), COALESCE(published_at, ''), video_duration,
	timestamps_valid, sponsor_excluded, success, COALESCE(error, ''),
	COALESCE(batch_id, ''), created_at`

// UpsertAnalysis replaces the stored analysis for a video in full.
// Only the most recent analysis survives.
func (r *analysisRepository) UpsertAnalysis(analysis *Analysis) error {
	createdAt := analysis.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO video_analyses (
			video_id, video_url, title, analysis, channel_id, channel_name,
			published_at, video_duration, timestamps_valid, sponsor_excluded,
			success, error, batch_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id) DO UPDATE SET
			video_url = excluded.video_url,
			title = excluded.title,
			analysis = excluded.analysis,
			channel_id = excluded.channel_id,
			channel_name = excluded.channel_name,
			published_at = excluded.published_at,
			video_duration = excluded.video_duration,
			timestamps_valid = excluded.timestamps_valid,
			sponsor_excluded = excluded.sponsor_excluded,
			success = excluded.success,
			error = excluded.error,
			batch_id = excluded.batch_id,
			created_at = excluded.created_at
	`, analysis.VideoID, analysis.VideoURL, analysis.Title, analysis.Analysis,
		analysis.ChannelID, analysis.ChannelName, analysis.PublishedAt,
		analysis.Duration, analysis.TimestampsValid, analysis.SponsorExcluded,
		analysis.Success, analysis.Error, analysis.BatchID, createdAt)

	if err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}

	return nil
}

// GetAnalysis returns the stored analysis for a video, or nil when absent
func (r *analysisRepository) GetAnalysis(videoID string) (*Analysis, error) {
	row := r.db.QueryRow(`
		SELECT `+analysisColumns+`
		FROM video_analyses
		WHERE video_id = ?
	`, videoID)

	analysis, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return analysis, nil
}

// GetFailedAnalyses returns all analyses with success = false
func (r *analysisRepository) GetFailedAnalyses() ([]Analysis, error) {
	rows, err := r.db.Query(`
		SELECT ` + analysisColumns + `
		FROM video_analyses
		WHERE success = FALSE
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed analyses: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// GetRecentAnalyses returns analyses created within the last N days
func (r *analysisRepository) GetRecentAnalyses(days int) ([]Analysis, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := r.db.Query(`
		SELECT `+analysisColumns+`
		FROM video_analyses
		WHERE created_at >= ?
		ORDER BY created_at DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent analyses: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// GetAnalysesPage returns one page of analyses, optionally filtered by channel.
// Page is clamped to >= 1 and pageSize to [1, MaxPageSize]. Items with an
// unknown published date sort last.
func (r *analysisRepository) GetAnalysesPage(channelID string, page, pageSize int) (*AnalysesPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	where := ""
	args := []interface{}{}
	if channelID != "" {
		where = "WHERE channel_id = ?"
		args = append(args, channelID)
	}

	var totalCount int
	err := r.db.QueryRow("SELECT COUNT(*) FROM video_analyses "+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.Query(`
		SELECT `+analysisColumns+`
		FROM video_analyses
		`+where+`
		ORDER BY
			CASE WHEN published_at IS NULL OR published_at = '' THEN 1 ELSE 0 END,
			published_at DESC
		LIMIT ? OFFSET ?
	`, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses page: %w", err)
	}
	defer rows.Close()

	analyses, err := collectAnalyses(rows)
	if err != nil {
		return nil, err
	}

	totalPages := (totalCount + pageSize - 1) / pageSize

	return &AnalysesPage{
		Analyses:   analyses,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var a Analysis
	err := row.Scan(
		&a.VideoID, &a.VideoURL, &a.Title, &a.Analysis, &a.ChannelID,
		&a.ChannelName, &a.PublishedAt, &a.Duration, &a.TimestampsValid,
		&a.SponsorExcluded, &a.Success, &a.Error, &a.BatchID, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAnalyses(rows *sql.Rows) ([]Analysis, error) {
	analyses := []Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		analyses = append(analyses, *analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis rows: %w", err)
	}

	return analyses, nil
}
