// Package app wires configuration, logging, persisted client state, the API
// client and the services shared by cmd/feedpulse-server and cmd/feedpulse.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/feedpulse/internal/auth"
	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/metrics"
	"github.com/bobmcallan/feedpulse/internal/services/customers"
	"github.com/bobmcallan/feedpulse/internal/services/onboarding"
	"github.com/bobmcallan/feedpulse/internal/services/specs"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
	"github.com/bobmcallan/feedpulse/internal/storage"
)

// Mode selects where bearer tokens come from.
type Mode int

const (
	// ModeServer reads the token from each request's SessionContext.
	ModeServer Mode = iota
	// ModeCLI reads the token persisted by `feedpulse login`.
	ModeCLI
)

// Options control NewApp. Empty fields keep the config values.
type Options struct {
	ConfigPath string
	Mode       Mode
	APIURL     string
	LogLevel   string
}

// App holds the initialized client, storage and services.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Store   interfaces.KeyValueStore
	Client  *client.Client
	Session *auth.Session
	Metrics *metrics.Metrics

	Specs      *specs.Service
	Uploads    *upload.Service
	Manual     *upload.Manual
	Customers  *customers.Service
	Onboarding *onboarding.Service

	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the explicit path, then
// FEEDPULSE_CONFIG, then feedpulse.toml next to the binary, then
// config/feedpulse.toml.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("FEEDPULSE_CONFIG"); env != "" {
		return env
	}
	path := filepath.Join(getBinaryDir(), "feedpulse.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "config/feedpulse.toml"
	}
	return path
}

// stateDir is where relative storage and log paths are anchored. The server
// keeps them beside its binary; the CLI keeps them in the user config dir.
func stateDir(mode Mode) string {
	if mode == ModeCLI {
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, "feedpulse")
		}
	}
	return getBinaryDir()
}

// NewApp loads config, opens storage and builds the client and services.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.APIURL != "" {
		config.API.BaseURL = opts.APIURL
	}
	if opts.LogLevel != "" {
		config.Logging.Level = opts.LogLevel
	}

	base := stateDir(opts.Mode)
	if config.Storage.SQLite.Path != "" && !filepath.IsAbs(config.Storage.SQLite.Path) {
		config.Storage.SQLite.Path = filepath.Join(base, config.Storage.SQLite.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(base, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := storage.NewKeyValueStore(ctx, logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := New(config, logger, store, opts.Mode)
	a.StartupTime = startupStart
	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// New builds an App from already initialized parts. Tests use it with a
// memory store.
func New(config *common.Config, logger *common.Logger, store interfaces.KeyValueStore, mode Mode) *App {
	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Session:     auth.NewSession(store, config.API.Token, logger),
		Metrics:     metrics.New(),
		StartupTime: time.Now(),
	}

	clientOpts := []client.ClientOption{client.WithObserver(a.Metrics.ObserveUpstream)}
	if mode == ModeCLI {
		clientOpts = append(clientOpts,
			client.WithTokenProvider(a.Session),
			client.WithUnauthorizedHandler(func(ctx context.Context, loginPath string) {
				logger.Warn().Msg("Session expired; run `feedpulse login` to sign in again")
			}),
		)
	}
	a.Client = client.NewClientFromConfig(config.API, logger, clientOpts...)

	a.Specs = specs.NewService(a.Client, logger)
	a.Uploads = upload.NewService(a.Client, a.Client, logger)
	a.Manual = upload.NewManual(a.Client, a.Client)
	a.Customers = customers.NewService(a.Client, logger, config.Search.GetPageSize())
	a.Onboarding = onboarding.NewService(a.Client, logger)
	return a
}

// Close releases storage.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}
