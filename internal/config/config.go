package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the BatStats backend the dashboard talks to when
// nothing else is configured.
const DefaultAPIBaseURL = "http://localhost:8080/api"

const (
	SearchStrategyServer = "server"
	SearchStrategyClient = "client"
)

// Config represents the complete dashboard configuration
type Config struct {
	API       APIConfig       `toml:"api"`
	Server    ServerConfig    `toml:"server"`
	Redis     RedisConfig     `toml:"redis"`
	Session   SessionConfig   `toml:"session"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

// APIConfig points at the BatStats REST backend
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

// RedisConfig controls where session state is kept. When disabled, sessions
// live in process memory.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SessionConfig struct {
	Secret               string `toml:"secret"`
	TTLMinutes           int    `toml:"ttl_minutes"`
	SweepIntervalSeconds int    `toml:"sweep_interval_seconds"`
}

// DashboardConfig holds UI behaviour knobs. The browser already debounces
// keystrokes, so SearchDebounceMillis only adds server side delay when set.
type DashboardConfig struct {
	SearchStrategy         string `toml:"search_strategy"`
	SearchDebounceMillis   int    `toml:"search_debounce_ms"`
	SearchMinLength        int    `toml:"search_min_length"`
	ReconcileDelayMillis   int    `toml:"reconcile_delay_ms"`
	BannerTTLSeconds       int    `toml:"banner_ttl_seconds"`
	RefreshIntervalSeconds int    `toml:"refresh_interval_seconds"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			TimeoutSeconds: 15,
		},
		Server: ServerConfig{Port: 3000},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Session: SessionConfig{
			TTLMinutes:           12 * 60,
			SweepIntervalSeconds: 5 * 60,
		},
		Dashboard: DashboardConfig{
			SearchStrategy:         SearchStrategyServer,
			SearchDebounceMillis:   0,
			SearchMinLength:        2,
			ReconcileDelayMillis:   500,
			BannerTTLSeconds:       5,
			RefreshIntervalSeconds: 60,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file, a .env
// file and the process environment, in that order.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			log.Printf("DEBUG: config file %s not found, using defaults", filename)
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("BATSTATS_API_URL", cfg.API.BaseURL)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = v == "true"
	}
	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Dashboard.SearchStrategy = getEnv("SEARCH_STRATEGY", cfg.Dashboard.SearchStrategy)
}

// Validate rejects configurations the dashboard cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api base_url is required")
	}
	switch c.Dashboard.SearchStrategy {
	case SearchStrategyServer, SearchStrategyClient:
	default:
		return fmt.Errorf("unknown search strategy %q", c.Dashboard.SearchStrategy)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Dashboard.SearchMinLength < 1 {
		c.Dashboard.SearchMinLength = 1
	}
	return nil
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func (c DashboardConfig) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMillis) * time.Millisecond
}

func (c DashboardConfig) ReconcileDelay() time.Duration {
	return time.Duration(c.ReconcileDelayMillis) * time.Millisecond
}

func (c DashboardConfig) BannerTTL() time.Duration {
	return time.Duration(c.BannerTTLSeconds) * time.Second
}

func (c DashboardConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARN: ignoring invalid %s=%q: %v", key, value, err)
		return defaultValue
	}
	return n
}
