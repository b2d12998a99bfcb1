// Package config loads the server configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the process-wide settings read once at startup.
type Config struct {
	JWTSecret      string        `mapstructure:"JWTSECRET"`
	Port           string        `mapstructure:"PORT"`
	DBPath         string        `mapstructure:"DB_PATH"`
	Env            string        `mapstructure:"APP_ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	AuthRateLimit  int           `mapstructure:"AUTH_RATE_LIMIT"`
	AuthRateWindow time.Duration `mapstructure:"AUTH_RATE_WINDOW"`
	OTLPEndpoint   string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads .env (if present) and the process environment into a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("JWTSECRET", "")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_PATH", "ourApp.db")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("AUTH_RATE_WINDOW", time.Minute)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate ensures the required values are present.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWTSECRET is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.AuthRateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	if c.AuthRateWindow <= 0 {
		return errors.New("AUTH_RATE_WINDOW must be positive")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		slog.Warn("JWTSECRET is shorter than 32 characters")
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
