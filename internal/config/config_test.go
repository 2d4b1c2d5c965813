package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")

	cfg := Load()
	if cfg.Database.DSN != "" {
		t.Fatalf("expected empty dsn by default, got %q", cfg.Database.DSN)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Fatalf("expected 1m window, got %s", cfg.RateLimit.Window)
	}
	if cfg.API.DefaultFormat != "png" {
		t.Fatalf("expected png default format, got %s", cfg.API.DefaultFormat)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SKINFLOW_API_ADDR", ":9999")
	t.Setenv("RATE_LIMIT_CAPACITY", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("WEBHOOK_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("MINIO_ENABLED", "false")
	t.Setenv("SKINFLOW_DEFAULT_FORMAT", "WEBP")

	cfg := Load()
	if cfg.API.Addr != ":9999" {
		t.Fatalf("expected :9999, got %s", cfg.API.Addr)
	}
	if cfg.RateLimit.Capacity != 5 || cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("unexpected rate limit config %+v", cfg.RateLimit)
	}
	if cfg.Webhook.MaxAttempts != 3 {
		t.Fatalf("expected fallback attempts 3, got %d", cfg.Webhook.MaxAttempts)
	}
	if cfg.Storage.Enabled {
		t.Fatal("expected storage disabled")
	}
	if cfg.API.DefaultFormat != "webp" {
		t.Fatalf("expected webp, got %s", cfg.API.DefaultFormat)
	}
}

func TestEnvDurationRejectsNonPositive(t *testing.T) {
	t.Setenv("SKINFLOW_TEST_DURATION", "-5s")
	if got := envDuration("SKINFLOW_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}
