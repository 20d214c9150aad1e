package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SLOT_STEP", "")
	t.Setenv("CALENDAR_MONTHS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SlotStep != 15*time.Minute {
		t.Fatalf("expected 15m slot step, got %s", cfg.SlotStep)
	}
	if cfg.CalendarMonths != 12 {
		t.Fatalf("expected 12 calendar months, got %d", cfg.CalendarMonths)
	}
	if cfg.ProviderListLimit != 5 {
		t.Fatalf("expected provider list limit 5, got %d", cfg.ProviderListLimit)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PYSKED_BASE_URL", "http://pysked.local")
	t.Setenv("SLOT_STEP", "30m")
	t.Setenv("CALENDAR_MONTHS", "3")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("APP_TIMEZONE", "America/New_York")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.PyskedBaseURL != "http://pysked.local" {
		t.Fatalf("expected pysked override, got %s", cfg.PyskedBaseURL)
	}
	if cfg.SlotStep != 30*time.Minute {
		t.Fatalf("expected 30m slot step, got %s", cfg.SlotStep)
	}
	if cfg.CalendarMonths != 3 {
		t.Fatalf("expected 3 calendar months, got %d", cfg.CalendarMonths)
	}
	if !cfg.UseMemoryStore {
		t.Fatalf("expected memory store enabled")
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate 2.5, got %v", cfg.RateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Fatalf("expected New York location, got %s", cfg.Location())
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{AppTimezone: "Mars/Olympus_Mons"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location())
	}
}
