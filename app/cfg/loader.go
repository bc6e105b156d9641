package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"podlens.db" description:"SQLite database file path"`
	ChannelsFile string `long:"channels-file" env:"CHANNELS_FILE" default:"channels.yaml" description:"YAML file with trusted channels"`

	// Batch analysis configuration
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"8" description:"Number of concurrent analysis workers"`
	DispatchDelayMs   int `long:"dispatch-delay-ms" env:"DISPATCH_DELAY_MS" default:"250" description:"Delay between dispatching analysis units in milliseconds"`
	DiscoveryDaysBack int `long:"discovery-days-back" env:"DISCOVERY_DAYS_BACK" default:"7" description:"Default discovery window in days"`

	// Provider configuration
	YouTubeAPIKey string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key (feed-based discovery is used when unset)"`
	GeminiAPIKey  string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key"`
	GeminiModel   string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.5-flash" description:"Gemini model used for video analysis"`

	// Unattended runs
	Schedule string `long:"schedule" env:"SCHEDULE" description:"Cron spec for unattended batch analysis runs (disabled when unset)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		DBPath:            raw.DBPath,
		ChannelsFile:      raw.ChannelsFile,
		WorkerCount:       raw.WorkerCount,
		DispatchDelayMs:   raw.DispatchDelayMs,
		DiscoveryDaysBack: raw.DiscoveryDaysBack,
		YouTubeAPIKey:     raw.YouTubeAPIKey,
		GeminiAPIKey:      raw.GeminiAPIKey,
		GeminiModel:       raw.GeminiModel,
		Schedule:          raw.Schedule,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
