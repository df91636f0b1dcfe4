package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Polling  PollingConfig  `toml:"polling"`
	Player   PlayerConfig   `toml:"player"`
	Library  LibraryConfig  `toml:"library"`
	Database DatabaseConfig `toml:"database"`
	TUI      TUIConfig      `toml:"tui"`
}

// BackendConfig locates the download backend.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
}

// PollingConfig contains poll intervals in milliseconds.
type PollingConfig struct {
	ProgressIntervalMS int `toml:"progress_interval_ms"`
	QueueFastMS        int `toml:"queue_fast_ms"`
	QueueSlowMS        int `toml:"queue_slow_ms"`
}

// PlayerConfig configures the external audio player process.
type PlayerConfig struct {
	Command           string   `toml:"command"`
	Args              []string `toml:"args"`
	Volume            int      `toml:"volume"`
	RestartThresholdS float64  `toml:"restart_threshold_s"`
}

// LibraryConfig contains settings for bulk library operations.
type LibraryConfig struct {
	DeleteRate float64 `toml:"delete_rate"` // delete requests per second
	ZipName    string  `toml:"zip_name"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TUIConfig contains paths used by the interactive UI.
type TUIConfig struct {
	LogFile  string `toml:"log_file"`
	LockFile string `toml:"lock_file"`
}

// ProgressInterval returns the task poll interval.
func (p PollingConfig) ProgressInterval() time.Duration {
	return time.Duration(p.ProgressIntervalMS) * time.Millisecond
}

// QueueFast returns the queue poll interval used while an item is processing.
func (p PollingConfig) QueueFast() time.Duration {
	return time.Duration(p.QueueFastMS) * time.Millisecond
}

// QueueSlow returns the queue poll interval used while items are only queued.
func (p PollingConfig) QueueSlow() time.Duration {
	return time.Duration(p.QueueSlowMS) * time.Millisecond
}

// LoadConfig reads a TOML file and overlays it on [DefaultConfig], so omitted keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that would otherwise break polling or playback.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("%w: backend.base_url is empty", ErrInvalidConfig)
	}
	if c.Polling.ProgressIntervalMS <= 0 || c.Polling.QueueFastMS <= 0 || c.Polling.QueueSlowMS <= 0 {
		return fmt.Errorf("%w: polling intervals must be positive", ErrInvalidConfig)
	}
	if c.Polling.QueueFastMS > c.Polling.QueueSlowMS {
		return fmt.Errorf("%w: polling.queue_fast_ms must not exceed polling.queue_slow_ms", ErrInvalidConfig)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 100 {
		return fmt.Errorf("%w: player.volume must be within 0-100", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
