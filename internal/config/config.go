// Package config manages the YAML bootstrap configuration under
// ~/.config/clipd. The file locates the database and carries first-run
// defaults; once the database exists, its settings record is authoritative
// for the runtime values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the clipd bootstrap configuration.
type Config struct {
	DatabaseLocation string `yaml:"database_location,omitempty"`
	PollIntervalMS   int    `yaml:"poll_interval_ms"`
	MaxHistoryItems  int    `yaml:"max_history_items"`
	AutoCleanup      bool   `yaml:"auto_cleanup_enabled"`
	ClearOnExit      bool   `yaml:"clear_on_exit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PollIntervalMS:  500,
		MaxHistoryItems: 1000,
		AutoCleanup:     true,
		ClearOnExit:     false,
	}
}

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a configuration manager rooted at the default path.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "clipd", "config.yaml")
	return &Manager{configPath: configPath}, nil
}

// NewManagerWithPath creates a manager with a custom config path.
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Load reads the configuration, or returns the defaults when no file
// exists yet.
func (m *Manager) Load() (*Config, error) {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to disk, creating the directory if needed.
func (m *Manager) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// Validate checks ranges on the configured values.
func (c *Config) Validate() error {
	if c.PollIntervalMS < 50 || c.PollIntervalMS > 10000 {
		return fmt.Errorf("poll_interval_ms must be between 50 and 10000")
	}
	if c.MaxHistoryItems <= 0 {
		return fmt.Errorf("max_history_items must be greater than 0")
	}
	if c.MaxHistoryItems > 10000 {
		return fmt.Errorf("max_history_items cannot exceed 10000")
	}
	return nil
}
