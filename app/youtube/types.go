package youtube

// Video is one discoverable content item, resolved enough to schedule analysis
type Video struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	PublishedAt string `json:"published_at"`
	Duration    int    `json:"duration"` // seconds, 0 when unknown
	Excluded    bool   `json:"excluded_from_analysis"`
}
