package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration. Values come from a
// TOML file when CONFIG_FILE is set, and individual environment variables
// override file values either way.
type Config struct {
	Port        string `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	JWTSecret   string `toml:"jwt_secret"`

	Redis RedisConfig `toml:"redis"`

	SessionTokenTTL time.Duration `toml:"-"`
	RefreshTokenTTL time.Duration `toml:"-"`

	Realtime RealtimeConfig `toml:"realtime"`

	UsageRetentionDays int `toml:"usage_retention_days"`
}

// RedisConfig contains the cache connection settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RealtimeConfig contains sweep cadence and staleness settings
type RealtimeConfig struct {
	SweepIntervalSeconds  int `toml:"sweep_interval_seconds"`
	StaleThresholdSeconds int `toml:"stale_threshold_seconds"`
}

// Load builds the configuration from the optional TOML file plus the
// environment. JWT_SECRET and DATABASE_URL are required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               "8080",
		SessionTokenTTL:    time.Hour,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		UsageRetentionDays: 90,
		Realtime: RealtimeConfig{
			SweepIntervalSeconds:  120,
			StaleThresholdSeconds: 600,
		},
	}

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	if v := os.Getenv("SESSION_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TOKEN_TTL: %w", err)
		}
		cfg.SessionTokenTTL = ttl
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
		}
		cfg.RefreshTokenTTL = ttl
	}
	if v := os.Getenv("CONNECTION_SWEEP_INTERVAL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CONNECTION_SWEEP_INTERVAL_SECONDS: %w", err)
		}
		cfg.Realtime.SweepIntervalSeconds = n
	}
	if v := os.Getenv("CONNECTION_STALE_THRESHOLD_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CONNECTION_STALE_THRESHOLD_SECONDS: %w", err)
		}
		cfg.Realtime.StaleThresholdSeconds = n
	}
	if v := os.Getenv("USAGE_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid USAGE_RETENTION_DAYS: %w", err)
		}
		cfg.UsageRetentionDays = n
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// SweepInterval returns the connection sweep cadence as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Realtime.SweepIntervalSeconds) * time.Second
}

// StaleThreshold returns the heartbeat staleness threshold as a duration.
func (c *Config) StaleThreshold() time.Duration {
	return time.Duration(c.Realtime.StaleThresholdSeconds) * time.Second
}

// UsageRetention returns the usage record retention window as a duration.
func (c *Config) UsageRetention() time.Duration {
	return time.Duration(c.UsageRetentionDays) * 24 * time.Hour
}
