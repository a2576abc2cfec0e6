// Package config handles configuration loading and validation for remind.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	MaxActual int         `yaml:"max_actual"` // capacity of the actual list
	Sync      SyncConfig  `yaml:"sync"`
	Cloud     CloudConfig `yaml:"cloud"`
	TUI       TUIConfig   `yaml:"tui"`
	DataDir   string      `yaml:"-"` // set by caller, not from config file
}

// SyncConfig controls the background sync scheduler.
type SyncConfig struct {
	// Interval between periodic cloud pulls.
	Interval time.Duration `yaml:"interval"`
}

// CloudConfig holds the remote document store connection. An empty
// endpoint disables cloud sync; the app then runs local-only.
type CloudConfig struct {
	Endpoint     string `yaml:"endpoint"`
	TokenURL     string `yaml:"token_url"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// TUIConfig holds interactive-view settings.
type TUIConfig struct {
	// SettleDelay is how long a completed or deleted reminder remains
	// visible (in its leaving state) before it is removed from the list.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// ShowCompleted renders the recent completed section.
	ShowCompleted bool `yaml:"show_completed"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxActual: 6,
		Sync: SyncConfig{
			Interval: 5 * time.Minute,
		},
		TUI: TUIConfig{
			SettleDelay:   300 * time.Millisecond,
			ShowCompleted: true,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.MaxActual == 0 {
		c.MaxActual = defaults.MaxActual
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = defaults.Sync.Interval
	}
	if c.TUI.SettleDelay == 0 {
		c.TUI.SettleDelay = defaults.TUI.SettleDelay
	}
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// CloudEnabled reports whether a cloud endpoint is configured.
func (c *Config) CloudEnabled() bool {
	return c.Cloud.Endpoint != ""
}
