// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret is the placeholder signing key used when
// SESSION_SECRET is unset. It is only accepted for local, non-secure setups.
const DefaultSessionSecret = "change-me-in-production"

// Config holds every runtime setting of the booking service.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me-in-production"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// CORSOrigin is the browser origin allowed to call the API cross-site.
	CORSOrigin string `env:"CORS_ORIGIN"`

	// RosterDatabaseURL points at the external roster database. Roster sync
	// is disabled when it is empty.
	RosterDatabaseURL     string `env:"ROSTER_DATABASE_URL"`
	RosterSchedule        string `env:"ROSTER_SCHEDULE" envDefault:"@every 6h"`
	RosterDefaultPassword string `env:"ROSTER_DEFAULT_PASSWORD" envDefault:"laengalba2024"`

	SeedStart         string `env:"SEED_START" envDefault:"2025-09-01"`
	SeedEnd           string `env:"SEED_END" envDefault:"2026-06-30"`
	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@laengalba.com"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:"password123"`
	SeedTestStudent   bool   `env:"SEED_TEST_STUDENT" envDefault:"true"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment into Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, _, err := cfg.SeedPeriod(); err != nil {
		return Config{}, err
	}
	if cfg.UsesDefaultSecret() && (cfg.CookieSecure || cfg.RosterEnabled()) {
		return Config{}, errors.New("SESSION_SECRET must be set when COOKIE_SECURE or ROSTER_DATABASE_URL is configured")
	}
	return cfg, nil
}

// SeedPeriod returns the first and last day of generated classes.
func (c Config) SeedPeriod() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.SeedStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse SEED_START: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.SeedEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse SEED_END: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("SEED_END %s is before SEED_START %s", c.SeedEnd, c.SeedStart)
	}
	return start, end, nil
}

// UsesDefaultSecret reports whether sessions are signed with the placeholder
// key.
func (c Config) UsesDefaultSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// RosterEnabled reports whether an external roster database is configured.
func (c Config) RosterEnabled() bool {
	return c.RosterDatabaseURL != ""
}
