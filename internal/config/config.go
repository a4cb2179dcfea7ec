// Package config loads application configuration from a YAML file layered
// over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Market struct {
		HomeWorld     string `yaml:"home_world"`
		DataCenter    string `yaml:"data_center"`
		Region        string `yaml:"region"`
		CacheWindowMs int64  `yaml:"cache_window_ms"`
		BaseURL       string `yaml:"base_url"`
	} `yaml:"market"`

	Data struct {
		Dir      string `yaml:"dir"`
		Database string `yaml:"database"`
	} `yaml:"data"`

	Search struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"search"`

	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.Host = ""
	cfg.Market.HomeWorld = "Ravana"
	cfg.Market.DataCenter = "Materia"
	cfg.Market.Region = "Oceania"
	cfg.Market.CacheWindowMs = 15 * 60 * 1000
	cfg.Data.Dir = "data"
	cfg.Data.Database = "data/xiv-profit.db"
	cfg.Search.PageSize = 10
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads a YAML config file layered over Default. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyEnv(&cfg)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays the handful of settings commonly set per deployment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HOME_WORLD"); v != "" {
		cfg.Market.HomeWorld = v
	}
	if v := os.Getenv("MARKET_REGION"); v != "" {
		cfg.Market.Region = v
	}
	if v := os.Getenv("UNIVERSALIS_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Market.CacheWindowMs < 0 {
		return fmt.Errorf("cache_window_ms must not be negative")
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
