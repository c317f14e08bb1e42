// Package config handles configuration loading and validation for boardsync.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Board modes. The mode determines backend routing for every operation and
// is fixed for the lifetime of an engine.
const (
	ModeGlobal  = "global"
	ModeProject = "project"
	ModeMeeting = "meeting"
)

// Config holds the application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Board   BoardConfig   `yaml:"board"`
}

// BackendConfig holds connection settings for the task backend.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// Timeout returns the per-request timeout.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// BoardConfig holds the board scoping and filter defaults.
type BoardConfig struct {
	Mode            string `yaml:"mode"`
	ProjectID       string `yaml:"project_id"`
	TranscriptionID string `yaml:"transcription_id"`
	DebounceMS      int    `yaml:"debounce_ms"`
	UserName        string `yaml:"user_name"`
}

// Debounce returns the refetch quiescence window.
func (c BoardConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			TimeoutMS: 10_000,
		},
		Board: BoardConfig{
			Mode:       ModeGlobal,
			DebounceMS: 500,
		},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Backend.TimeoutMS == 0 {
		c.Backend.TimeoutMS = defaults.Backend.TimeoutMS
	}
	if c.Board.Mode == "" {
		c.Board.Mode = defaults.Board.Mode
	}
	if c.Board.DebounceMS == 0 {
		c.Board.DebounceMS = defaults.Board.DebounceMS
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	switch c.Board.Mode {
	case ModeGlobal, ModeProject, ModeMeeting:
	default:
		return fmt.Errorf("board.mode must be one of global, project, meeting; got %q", c.Board.Mode)
	}

	if c.Board.Mode == ModeProject && c.Board.ProjectID == "" {
		return fmt.Errorf("board.project_id is required in project mode")
	}

	if c.Board.Mode == ModeMeeting && c.Board.TranscriptionID == "" {
		return fmt.Errorf("board.transcription_id is required in meeting mode")
	}

	if c.Board.DebounceMS < 0 {
		return fmt.Errorf("board.debounce_ms cannot be negative")
	}

	return nil
}
