// Command notifcenter is a terminal client for the shop notifications API.
package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nhle/notification-center/internal/alert"
	"github.com/nhle/notification-center/internal/app"
	"github.com/nhle/notification-center/internal/credential"
	"github.com/nhle/notification-center/internal/logger"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
	"github.com/nhle/notification-center/internal/source/minishop"
	"github.com/nhle/notification-center/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "notifcenter: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", model.DefaultConfigPath(), "path to the config file")
	baseURL := pflag.String("url", "", "notifications API base URL (overrides the config file)")
	logLevel := pflag.String("log-level", "", "log level (debug, info, warn, error)")
	pflag.Parse()

	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	var logOut io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: logOut,
	})

	st, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening sync history: %w", err)
	}
	defer st.Close()

	token, err := credential.Token()
	if err != nil {
		log.Warn().Err(err).Msg("could not read API token from keyring")
	}

	connect := func(c model.AppConfig, token string) source.Source {
		return minishop.NewAdapter(c.API.BaseURL, token,
			minishop.WithTimeout(c.APITimeout()),
			minishop.WithRateLimit(c.API.RatePerSec),
		)
	}

	var src source.Source
	if cfg.API.BaseURL != "" {
		src = connect(*cfg, token)
	}

	trigger := alert.NewTrigger(
		alert.DetectPlayer(cfg.Alert.Player, os.Stderr),
		logger.Component(log, "alert"),
	)

	var (
		program  *tea.Program
		watching atomic.Bool
	)
	watch := func() {
		if watching.Load() {
			return
		}
		ok := model.WatchConfig(*configPath, func(c *model.AppConfig, err error) {
			if program != nil {
				program.Send(app.ConfigReloadedMsg{Config: c, Err: err})
			}
		})
		watching.Store(ok)
	}

	persist := func(c model.AppConfig, token string) error {
		if err := model.SaveConfig(*configPath, &c); err != nil {
			return err
		}
		if err := credential.SaveToken(token); err != nil {
			return fmt.Errorf("storing API token: %w", err)
		}
		watch()
		return nil
	}

	root := app.New(app.Options{
		Config:  cfg,
		Token:   token,
		Source:  src,
		Store:   st,
		Alert:   trigger,
		Connect: connect,
		Persist: persist,
		BellOut: os.Stderr,
		Logger:  log,
	})

	program = tea.NewProgram(root, tea.WithAltScreen())
	watch()

	log.Info().
		Str("config", *configPath).
		Str("base_url", cfg.API.BaseURL).
		Dur("interval", cfg.RefreshInterval()).
		Msg("starting")

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(app.Model); ok {
		m.Shutdown()
	}
	log.Info().Msg("stopped")
	return nil
}
