package cfg

type Cfg struct {
	// Application configuration
	Port         string
	APIAccessKey string
	DBPath       string
	ChannelsFile string

	// Batch analysis configuration
	WorkerCount       int
	DispatchDelayMs   int
	DiscoveryDaysBack int

	// Provider configuration
	YouTubeAPIKey string
	GeminiAPIKey  string
	GeminiModel   string

	// Unattended runs
	Schedule string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
