// Package common provides shared utilities for feedpulse
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for feedpulse
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	API         APIConfig       `toml:"api"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Search      SearchConfig    `toml:"search"`
	Dashboard   DashboardConfig `toml:"dashboard"`
	Chat        ChatConfig      `toml:"chat"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// APIConfig describes the upstream feedback analytics API.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"` // requests per second, 0 disables limiting
	Token     string `toml:"token"`      // optional static bearer token
	LoginPath string `toml:"login_path"`
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// StorageConfig selects the key-value backend for persisted client state
// (token, theme, starred feedback).
type StorageConfig struct {
	Backend   string        `toml:"backend"` // "memory", "sqlite", "redis", "surrealdb"
	SQLite    SQLiteConfig  `toml:"sqlite"`
	Redis     RedisConfig   `toml:"redis"`
	SurrealDB SurrealConfig `toml:"surrealdb"`
}

// SQLiteConfig holds the local database path.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// RedisConfig holds connection details for the shared KV.
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// SurrealConfig holds connection details for SurrealDB.
type SurrealConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// SearchConfig tunes the feedback list.
type SearchConfig struct {
	PageSize int    `toml:"page_size"`
	Debounce string `toml:"debounce"`
	OnError  string `toml:"on_error"` // "keep" (default) or "clear"
}

// ClearOnError reports whether a failed search empties the list instead of
// keeping the last good page.
func (c *SearchConfig) ClearOnError() bool {
	return strings.EqualFold(strings.TrimSpace(c.OnError), "clear")
}

// GetDebounce parses the debounce interval, defaulting to 250ms.
func (c *SearchConfig) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil || d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}

// GetPageSize returns the configured page size or 20.
func (c *SearchConfig) GetPageSize() int {
	if c.PageSize <= 0 {
		return 20
	}
	return c.PageSize
}

// DashboardConfig holds dashboard defaults.
type DashboardConfig struct {
	DefaultPeriod string `toml:"default_period"`
	TopLimit      int    `toml:"top_limit"`
	RecentLimit   int    `toml:"recent_limit"`
}

// ChatConfig holds agent chat settings.
type ChatConfig struct {
	UnavailableMessage string `toml:"unavailable_message"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api/v1",
			Timeout:   "30s",
			RateLimit: 20,
			LoginPath: "/login",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			SQLite:  SQLiteConfig{Path: "data/feedpulse.db"},
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "feedpulse:",
			},
			SurrealDB: SurrealConfig{
				Address:   "ws://localhost:8000/rpc",
				Namespace: "feedpulse",
				Database:  "client",
				Username:  "root",
				Password:  "root",
			},
		},
		Search: SearchConfig{
			PageSize: 20,
			Debounce: "250ms",
			OnError:  "keep",
		},
		Dashboard: DashboardConfig{
			DefaultPeriod: "30d",
			TopLimit:      5,
			RecentLimit:   10,
		},
		Chat: ChatConfig{
			UnavailableMessage: "Agent temporarily unavailable",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console"},
			FilePath:   "./logs/feedpulse.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FEEDPULSE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FEEDPULSE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FEEDPULSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FEEDPULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("FEEDPULSE_API_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("FEEDPULSE_API_TIMEOUT"); v != "" {
		config.API.Timeout = v
	}
	if v := os.Getenv("FEEDPULSE_TOKEN"); v != "" {
		config.API.Token = v
	}

	if v := os.Getenv("FEEDPULSE_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("FEEDPULSE_SQLITE_PATH"); v != "" {
		config.Storage.SQLite.Path = v
	}
	if v := os.Getenv("FEEDPULSE_REDIS_ADDR"); v != "" {
		config.Storage.Redis.Addr = v
	}
	if v := os.Getenv("FEEDPULSE_REDIS_PASSWORD"); v != "" {
		config.Storage.Redis.Password = v
	}
	if v := os.Getenv("FEEDPULSE_SURREALDB_ADDRESS"); v != "" {
		config.Storage.SurrealDB.Address = v
	}

	if v := os.Getenv("FEEDPULSE_DEFAULT_PERIOD"); v != "" {
		config.Dashboard.DefaultPeriod = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
