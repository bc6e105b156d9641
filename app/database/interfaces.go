package database

type AnalysisRepository interface {
	GetAnalysis(videoID string) (*Analysis, error)
	GetFailedAnalyses() ([]Analysis, error)
	GetRecentAnalyses(days int) ([]Analysis, error)
	GetAnalysesPage(channelID string, page, pageSize int) (*AnalysesPage, error)

	UpsertAnalysis(analysis *Analysis) error
}

type VideoRepository interface {
	GetVideo(videoID string) (*Video, error)
	GetRecentVideos(limit int) ([]Video, error)
	GetUnanalyzedVideos() ([]Video, error)

	UpsertVideo(video *Video) error
	MarkAnalyzed(videoID string) error
	SetInProgress(videoID string, inProgress bool) error
}
