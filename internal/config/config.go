package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"stock-watch/internal/market"
)

const PathEnv = "STOCK_WATCH_CONFIG"

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Market    MarketConfig    `yaml:"market"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	UI        UIConfig        `yaml:"ui"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json/console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type WatchlistConfig struct {
	Path string `yaml:"path"`
}

type MarketConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type RefreshConfig struct {
	TickMs       int `yaml:"tick_ms"`
	EveryTicks   int `yaml:"every_ticks"`
	ResultBuffer int `yaml:"result_buffer"`
}

type StoreConfig struct {
	Sqlite SqliteConfig `yaml:"sqlite"`
}

type SqliteConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type UIConfig struct {
	Title string `yaml:"title"`
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Market: MarketConfig{
			BaseURL:   market.DefaultBaseURL,
			TimeoutMs: 5000,
		},
		Refresh: RefreshConfig{
			TickMs:       1000,
			EveryTicks:   60,
			ResultBuffer: 64,
		},
		UI: UIConfig{Title: "stock-watch"},
	}
}

// Load reads the yaml config at path. A missing file yields the defaults;
// environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("STOCK_WATCH_DB_PATH"); v != "" {
		cfg.Watchlist.Path = v
	}
	if v := os.Getenv("STOCK_WATCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STOCK_WATCH_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("STOCK_WATCH_SQLITE_PATH"); v != "" {
		cfg.Store.Sqlite.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	return nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	if c.Refresh.TickMs <= 0 {
		return fmt.Errorf("invalid refresh.tick_ms: %d", c.Refresh.TickMs)
	}
	if c.Refresh.EveryTicks <= 0 {
		return fmt.Errorf("invalid refresh.every_ticks: %d", c.Refresh.EveryTicks)
	}
	if c.Refresh.ResultBuffer <= 0 {
		return fmt.Errorf("invalid refresh.result_buffer: %d", c.Refresh.ResultBuffer)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	return nil
}
