package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string        `env:"APP_ENV" envDefault:"dev"`
	Port          string        `env:"PORT" envDefault:"8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"./dev.db"`
	RefDataPath   string        `env:"REFDATA_PATH"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DurationPolicy     string  `env:"DURATION_POLICY" envDefault:"calendar"`
	LaborFallbackToAll bool    `env:"LABOR_FALLBACK_TO_ALL" envDefault:"true"`
	DefaultCountry     string  `env:"DEFAULT_COUNTRY" envDefault:"Colombia"`
	DefaultMargin      float64 `env:"DEFAULT_MARGIN" envDefault:"0.64"`
	DefaultRisk        string  `env:"DEFAULT_RISK" envDefault:"Low"`
}

// IsDev reports whether the service runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// A missing file is fine; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DurationPolicy != "calendar" && cfg.DurationPolicy != "averaged" {
		return Config{}, fmt.Errorf("DURATION_POLICY must be calendar or averaged, got %q", cfg.DurationPolicy)
	}
	if cfg.DefaultMargin < 0 || cfg.DefaultMargin >= 1 {
		return Config{}, fmt.Errorf("DEFAULT_MARGIN must be in [0, 1), got %v", cfg.DefaultMargin)
	}

	return cfg, nil
}

// Warnings lists settings that are legal but unsafe outside local development.
func (c Config) Warnings() []string {
	var warnings []string
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set")
	}
	if c.RedisAddr == "" && !c.IsDev() {
		warnings = append(warnings, "REDIS_ADDR is not set, sessions are kept in process memory")
	}
	return warnings
}
