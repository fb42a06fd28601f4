package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Fatalf("expected default ttl 168h, got %v", cfg.SessionTTL)
	}
	if cfg.RosterEnabled() {
		t.Fatal("expected roster sync disabled without a database url")
	}
	start, end, err := cfg.SeedPeriod()
	if err != nil {
		t.Fatalf("seed period: %v", err)
	}
	if start.Format(time.DateOnly) != "2025-09-01" || end.Format(time.DateOnly) != "2026-06-30" {
		t.Fatalf("seed period = %v..%v", start, end)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ROSTER_DATABASE_URL", "postgres://roster")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGIN", "https://studio.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9090" || !cfg.RosterEnabled() || cfg.SessionTTL != 2*time.Hour || cfg.CORSOrigin != "https://studio.example" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		_, err := Parse()
		if err == nil || !strings.Contains(err.Error(), "parse env:") {
			t.Fatalf("expected parse env error, got %v", err)
		}
	})
	t.Run("default secret with secure cookies", func(t *testing.T) {
		t.Setenv("COOKIE_SECURE", "true")
		if _, err := Parse(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
			t.Fatalf("expected SESSION_SECRET error, got %v", err)
		}
	})
	t.Run("default secret with roster database", func(t *testing.T) {
		t.Setenv("ROSTER_DATABASE_URL", "postgres://roster")
		if _, err := Parse(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
			t.Fatalf("expected SESSION_SECRET error, got %v", err)
		}
	})
	t.Run("inverted seed period", func(t *testing.T) {
		t.Setenv("SEED_START", "2026-01-01")
		t.Setenv("SEED_END", "2025-01-01")
		if _, err := Parse(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("bad seed date", func(t *testing.T) {
		t.Setenv("SEED_START", "01/09/2025")
		if _, err := Parse(); err == nil {
			t.Fatal("expected error")
		}
	})
}
