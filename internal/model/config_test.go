package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.API.BaseURL)
	assert.True(t, cfg.Refresh.Auto)
	assert.Equal(t, 3*time.Second, cfg.RefreshInterval())
	assert.Equal(t, 100, cfg.Refresh.Limit)
	assert.Equal(t, 30*time.Second, cfg.APITimeout())
	assert.True(t, cfg.Alert.Sound)
	assert.Equal(t, 500, cfg.History.Keep)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("NOTIFCENTER_API_BASE_URL", "http://shop.local/api/notifications/")
	t.Setenv("NOTIFCENTER_REFRESH_INTERVAL_MS", "1500")
	t.Setenv("NOTIFCENTER_ALERT_SOUND", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://shop.local/api/notifications", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 1500*time.Millisecond, cfg.RefreshInterval())
	assert.False(t, cfg.Alert.Sound)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.API.BaseURL = "http://localhost:8083/api/notifications"
	cfg.Refresh.IntervalMs = 5000
	cfg.Refresh.Auto = false
	cfg.Alert.Player = "paplay"
	cfg.History.Keep = 42
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, loaded.API.BaseURL)
	assert.Equal(t, 5*time.Second, loaded.RefreshInterval())
	assert.False(t, loaded.Refresh.Auto)
	assert.Equal(t, "paplay", loaded.Alert.Player)
	assert.Equal(t, 42, loaded.History.Keep)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "y.db"), ExpandPath("~/x/y.db"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestValidateReportsConfigKeys(t *testing.T) {
	cfg := DefaultAppConfig()
	require.NoError(t, cfg.Validate())

	cfg.API.BaseURL = "localhost:8083"
	cfg.Refresh.IntervalMs = 100
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url must be an http(s) URL")
	assert.Contains(t, err.Error(), "refresh.interval_ms must be at least 500")
	assert.Contains(t, err.Error(), "log.format must be one of: json console")
}

func TestLoadConfigRejectsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh:\n  interval_ms: 100\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh.interval_ms")
}
