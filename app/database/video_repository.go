package database

import (
	"database/sql"
	"fmt"
)

type videoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) VideoRepository {
	return &videoRepository{db: db}
}

const videoColumns = `video_id, title, url, channel_name, COALESCE(channel_id, ''),
	duration, COALESCE(published_at, ''), discovered_at, analyzed, in_progress,
	excluded_from_analysis`

// UpsertVideo records a discovered video. Re-discovery refreshes the metadata
// but leaves the analyzed and in_progress flags untouched.
func (r *videoRepository) UpsertVideo(video *Video) error {
	_, err := r.db.Exec(`
		INSERT INTO discovered_videos (
			video_id, title, url, channel_name, channel_id, duration,
			published_at, excluded_from_analysis
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			channel_name = excluded.channel_name,
			channel_id = excluded.channel_id,
			duration = excluded.duration,
			published_at = excluded.published_at,
			excluded_from_analysis = excluded.excluded_from_analysis
	`, video.VideoID, video.Title, video.URL, video.ChannelName, video.ChannelID,
		video.Duration, video.PublishedAt, video.Excluded)

	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}

	return nil
}

// GetVideo returns a discovered video by ID, or nil when absent
func (r *videoRepository) GetVideo(videoID string) (*Video, error) {
	row := r.db.QueryRow(`
		SELECT `+videoColumns+`
		FROM discovered_videos
		WHERE video_id = ?
	`, videoID)

	video, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// GetRecentVideos returns the most recently discovered videos
func (r *videoRepository) GetRecentVideos(limit int) ([]Video, error) {
	rows, err := r.db.Query(`
		SELECT `+videoColumns+`
		FROM discovered_videos
		ORDER BY discovered_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent videos: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// GetUnanalyzedVideos returns discovered videos without a stored analysis,
// excluding those flagged as excluded from analysis
func (r *videoRepository) GetUnanalyzedVideos() ([]Video, error) {
	rows, err := r.db.Query(`
		SELECT dv.video_id, dv.title, dv.url, dv.channel_name,
		       COALESCE(dv.channel_id, ''), dv.duration,
		       COALESCE(dv.published_at, ''), dv.discovered_at, dv.analyzed,
		       dv.in_progress, dv.excluded_from_analysis
		FROM discovered_videos dv
		LEFT JOIN video_analyses va ON dv.video_id = va.video_id
		WHERE (va.video_id IS NULL OR dv.analyzed = FALSE)
		  AND dv.excluded_from_analysis = FALSE
		ORDER BY dv.published_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get unanalyzed videos: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// MarkAnalyzed flags a video as having a stored analysis
func (r *videoRepository) MarkAnalyzed(videoID string) error {
	_, err := r.db.Exec(`
		UPDATE discovered_videos
		SET analyzed = TRUE
		WHERE video_id = ?
	`, videoID)

	if err != nil {
		return fmt.Errorf("failed to mark video analyzed: %w", err)
	}

	return nil
}

// SetInProgress sets or clears the transient in-progress marker
func (r *videoRepository) SetInProgress(videoID string, inProgress bool) error {
	_, err := r.db.Exec(`
		UPDATE discovered_videos
		SET in_progress = ?
		WHERE video_id = ?
	`, inProgress, videoID)

	if err != nil {
		return fmt.Errorf("failed to set in_progress: %w", err)
	}

	return nil
}

func scanVideo(row rowScanner) (*Video, error) {
	var v Video
	err := row.Scan(
		&v.VideoID, &v.Title, &v.URL, &v.ChannelName, &v.ChannelID,
		&v.Duration, &v.PublishedAt, &v.DiscoveredAt, &v.Analyzed,
		&v.InProgress, &v.Excluded,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVideos(rows *sql.Rows) ([]Video, error) {
	videos := []Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, *video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video rows: %w", err)
	}

	return videos, nil
}
