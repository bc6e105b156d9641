package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the channels configuration
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and validates the channels configuration file
func (l *Loader) Load() (*ChannelsConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config ChannelsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config)

	if err := l.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	return &config, nil
}

// setDefaults applies default values to configuration
func (l *Loader) setDefaults(config *ChannelsConfig) {
	if config.DiscoveryDaysBack == 0 {
		config.DiscoveryDaysBack = 7 // days
	}
	if config.VideoLengthExcluded == 0 {
		config.VideoLengthExcluded = 10 // minutes
	}
}

// validate validates the configuration
func (l *Loader) validate(config *ChannelsConfig) error {
	if config.DiscoveryDaysBack < 0 {
		return fmt.Errorf("discovery_days_back must be non-negative")
	}
	if config.VideoLengthExcluded < 0 {
		return fmt.Errorf("video_length_excluded must be non-negative")
	}

	seen := make(map[string]bool)
	for i, channel := range config.Channels {
		if channel.ChannelID == "" {
			return fmt.Errorf("channel at index %d is missing channel_id", i)
		}
		if channel.Name == "" {
			return fmt.Errorf("channel at index %d is missing name", i)
		}
		if seen[channel.ChannelID] {
			return fmt.Errorf("duplicate channel_id at index %d: %s", i, channel.ChannelID)
		}
		seen[channel.ChannelID] = true
	}

	return nil
}
