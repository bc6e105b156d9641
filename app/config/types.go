package config

// ChannelsConfig represents the trusted channels configuration file
type ChannelsConfig struct {
	Channels          []Channel `yaml:"channels"`
	DiscoveryDaysBack int       `yaml:"discovery_days_back"`
	// Videos shorter than this (minutes) are flagged as excluded from analysis
	VideoLengthExcluded int `yaml:"video_length_excluded"`
}

// Channel identifies one trusted content channel
type Channel struct {
	ChannelID string `yaml:"channel_id"`
	Name      string `yaml:"name"`
}
