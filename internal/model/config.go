package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override,
// e.g. NOTIFCENTER_API_BASE_URL or NOTIFCENTER_REFRESH_INTERVAL_MS.
const envPrefix = "NOTIFCENTER"

// APIConfig describes how to reach the notifications REST API.
type APIConfig struct {
	// BaseURL is the notifications resource root,
	// e.g. http://localhost:8083/api/notifications.
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,http_url"`

	// TimeoutSec bounds a single HTTP round trip.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"gte=0,lte=300"`

	// RatePerSec caps outgoing requests; bursts up to twice the rate.
	RatePerSec float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec" validate:"gte=0"`
}

// RefreshConfig controls the periodic polling loop.
type RefreshConfig struct {
	Auto       bool `mapstructure:"auto" yaml:"auto"`
	IntervalMs int  `mapstructure:"interval_ms" yaml:"interval_ms" validate:"omitempty,gte=500"`
	Limit      int  `mapstructure:"limit" yaml:"limit" validate:"gte=0,lte=1000"`
}

// AlertConfig controls the new-notification tone.
type AlertConfig struct {
	Sound bool `mapstructure:"sound" yaml:"sound"`

	// Player names the audio command to use; empty means auto-detect.
	Player string `mapstructure:"player" yaml:"player"`
}

// HistoryConfig controls the local sync journal.
type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	Keep int    `mapstructure:"keep" yaml:"keep" validate:"gte=0"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	File   string `mapstructure:"file" yaml:"file"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json console"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Refresh RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	Alert   AlertConfig   `mapstructure:"alert" yaml:"alert"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// RefreshInterval returns the polling period, falling back to 3s.
func (c *AppConfig) RefreshInterval() time.Duration {
	if c.Refresh.IntervalMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Refresh.IntervalMs) * time.Millisecond
}

// APITimeout returns the per-request timeout, falling back to 30s.
func (c *AppConfig) APITimeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// ConfigDir returns the directory holding config, history and logs,
// located at ~/.config/notifcenter.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notifcenter")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			TimeoutSec: 30,
			RatePerSec: 5,
		},
		Refresh: RefreshConfig{
			Auto:       true,
			IntervalMs: 3000,
			Limit:      100,
		},
		Alert: AlertConfig{
			Sound: true,
		},
		History: HistoryConfig{
			Path: filepath.Join(ConfigDir(), "history.db"),
			Keep: 500,
		},
		Log: LogConfig{
			Level:  "info",
			File:   filepath.Join(ConfigDir(), "notifcenter.log"),
			Format: "json",
		},
	}
}

// newViper builds a Viper instance bound to path with defaults and
// environment overrides registered.
func newViper(path string) *viper.Viper {
	d := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.rate_per_sec", d.API.RatePerSec)
	v.SetDefault("refresh.auto", d.Refresh.Auto)
	v.SetDefault("refresh.interval_ms", d.Refresh.IntervalMs)
	v.SetDefault("refresh.limit", d.Refresh.Limit)
	v.SetDefault("alert.sound", d.Alert.Sound)
	v.SetDefault("alert.player", d.Alert.Player)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.keep", d.History.Keep)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	cfg.History.Path = ExpandPath(cfg.History.Path)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	if cfg.Refresh.Limit <= 0 {
		cfg.Refresh.Limit = 100
	}
	if cfg.History.Keep <= 0 {
		cfg.History.Keep = 500
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("refresh", cfg.Refresh)
	v.Set("alert", cfg.Alert)
	v.Set("history", cfg.History)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// WatchConfig reloads the file at path whenever it is written and hands
// the result to onChange. It returns false when the file does not exist
// yet and nothing is being watched.
func WatchConfig(path string, onChange func(*AppConfig, error)) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return false
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(LoadConfig(path))
	})
	v.WatchConfig()

	return true
}
