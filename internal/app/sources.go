package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notification-center/internal/alert"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/ui/settings"
)

// ConfigReloadedMsg is sent when the configuration file changes on disk.
type ConfigReloadedMsg struct {
	Config *model.AppConfig
	Err    error
}

// validateConnection probes baseURL with token using a throwaway source.
func (m Model) validateConnection(ctx context.Context, baseURL, token string) (string, error) {
	if m.connect == nil {
		return "", errors.New("no connector configured")
	}
	cfg := *m.cfg
	cfg.API.BaseURL = baseURL
	return m.connect(cfg, token).ValidateConnection(ctx)
}

// reconnect replaces the source used by the poller and by write actions.
func (m *Model) reconnect(cfg model.AppConfig, token string) {
	if m.connect == nil || cfg.API.BaseURL == "" {
		return
	}
	m.src = m.connect(cfg, token)
	m.poller.SetSource(m.src)
	m.log.Info().Str("base_url", cfg.API.BaseURL).Msg("connected to notifications API")
}

// applyRuntime pushes the tunable settings to the running components.
func (m *Model) applyRuntime(cfg model.AppConfig) {
	m.poller.SetLimit(cfg.Refresh.Limit)
	m.poller.SetFetchTimeout(cfg.APITimeout())
	m.poller.SetPeriod(cfg.RefreshInterval())
	m.poller.SetEnabled(cfg.Refresh.Auto)
	m.session.SetSoundEnabled(cfg.Alert.Sound)
	m.journal.setKeep(cfg.History.Keep)

	if m.alert != nil && cfg.Alert.Player != m.cfg.Alert.Player {
		m.alert.SetPlayer(alert.DetectPlayer(cfg.Alert.Player, m.bellOut))
	}
}

func (m *Model) handleSettingsSaved(msg settings.SavedMsg) tea.Cmd {
	cfg := msg.Config
	m.reconnect(cfg, msg.Token)
	m.applyRuntime(cfg)
	m.cfg = &cfg
	m.token = msg.Token
	m.firstRun = false
	m.currentView = ViewList

	m.poller.RefreshNow()
	return nil
}

// handleConfigReload applies an edited config file. Reload errors keep the
// running configuration.
func (m *Model) handleConfigReload(msg ConfigReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.log.Warn().Err(msg.Err).Msg("config reload failed")
		return nil
	}
	if msg.Config == nil || m.firstRun {
		return nil
	}

	cfg := *msg.Config
	if cfg.API != m.cfg.API {
		m.reconnect(cfg, m.token)
		m.poller.RefreshNow()
	}
	m.applyRuntime(cfg)
	m.cfg = &cfg
	m.log.Info().Msg("config reloaded")
	return nil
}
