// Package config provides centralized configuration. Values come from
// built-in defaults, then an optional YAML file, then environment variables.
// Shared by cmd/sheets and cmd/api.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Record sources.
const (
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// DefaultInputDir is the folder read when none is given.
const DefaultInputDir = "Premier League"

// --------------------------------------------------------------------------
// Config struct
// --------------------------------------------------------------------------

type Config struct {
	// Pipeline
	InputDir   string `yaml:"input_dir"`
	OutputPath string `yaml:"output"` // empty = <folder>_stats_<timestamp>.xlsx
	Source     string `yaml:"source"` // dir or postgres
	Workers    int    `yaml:"workers"`

	// Database (postgres source only)
	DatabaseURL    string        `yaml:"database_url"`
	DBPoolMinConns int           `yaml:"db_pool_min_conns"`
	DBPoolMaxConns int           `yaml:"db_pool_max_conns"`
	DBPoolMaxLife  time.Duration `yaml:"db_pool_max_life"`

	// API server
	APIHost     string `yaml:"api_host"`
	APIPort     int    `yaml:"api_port"`
	Environment string `yaml:"environment"` // development, staging, production
	Debug       bool   `yaml:"debug"`

	// CORS
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`

	// Rate limiting
	RateLimitEnabled  bool          `yaml:"rate_limit_enabled"`
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// Cache and report freshness
	CacheEnabled bool          `yaml:"cache_enabled"`
	ReportTTL    time.Duration `yaml:"report_ttl"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		InputDir: DefaultInputDir,
		Source:   SourceDir,
		Workers:  1,

		DBPoolMinConns: 1,
		DBPoolMaxConns: 4,
		DBPoolMaxLife:  30 * time.Minute,

		APIHost:     "0.0.0.0",
		APIPort:     8000,
		Environment: "development",

		CORSAllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},

		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,

		CacheEnabled: true,
		ReportTTL:    10 * time.Minute,
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.InputDir = envOr("SHEETS_INPUT_DIR", c.InputDir)
	c.OutputPath = envOr("SHEETS_OUTPUT", c.OutputPath)
	c.Source = envOr("SHEETS_SOURCE", c.Source)
	c.Workers = envInt("SHEETS_WORKERS", c.Workers)

	c.DatabaseURL = envOr("DATABASE_URL", c.DatabaseURL)
	c.DBPoolMinConns = envInt("DB_POOL_MIN_CONNS", c.DBPoolMinConns)
	c.DBPoolMaxConns = envInt("DB_POOL_MAX_CONNS", c.DBPoolMaxConns)
	c.DBPoolMaxLife = envMinutes("DB_POOL_MAX_LIFE_MINUTES", c.DBPoolMaxLife)

	c.APIHost = envOr("API_HOST", c.APIHost)
	c.APIPort = envInt("API_PORT", envInt("PORT", c.APIPort))
	c.Environment = envOr("ENVIRONMENT", c.Environment)
	c.Debug = envBool("DEBUG", c.Debug)

	c.CORSAllowOrigins = envList("CORS_ALLOW_ORIGINS", c.CORSAllowOrigins)

	c.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", c.RateLimitEnabled)
	c.RateLimitRequests = envInt("RATE_LIMIT_REQUESTS", c.RateLimitRequests)
	if v := envInt("RATE_LIMIT_WINDOW", 0); v > 0 {
		c.RateLimitWindow = time.Duration(v) * time.Second
	}

	c.CacheEnabled = envBool("CACHE_ENABLED", c.CacheEnabled)
	c.ReportTTL = envMinutes("REPORT_TTL_MINUTES", c.ReportTTL)
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceDir:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("source %q requires DATABASE_URL", c.Source)
		}
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceDir, SourcePostgres)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envMinutes(key string, fallback time.Duration) time.Duration {
	if n := envInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Minute
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
