package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goEphemeral "github.com/MrEthical07/goEphemeral"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Users != 10000 || cfg.Concurrency != 64 || cfg.Ops != 100000 {
		t.Fatalf("unexpected workload defaults: %+v", cfg)
	}
	if cfg.AuditStream != goEphemeral.DefaultAuditStream {
		t.Fatalf("expected default audit stream, got %q", cfg.AuditStream)
	}
	if cfg.Engine.OTP.Lifetime != goEphemeral.DefaultOTPLifetime {
		t.Fatalf("expected OTP lifetime %s, got %s", goEphemeral.DefaultOTPLifetime, cfg.Engine.OTP.Lifetime)
	}
	if cfg.Engine.Session.Lifetime != goEphemeral.DefaultSessionLifetime {
		t.Fatalf("expected session lifetime %s, got %s", goEphemeral.DefaultSessionLifetime, cfg.Engine.Session.Lifetime)
	}
	if !cfg.Engine.Metrics.Enabled || !cfg.Engine.Metrics.EnableLatencyHistograms {
		t.Fatal("expected metrics enabled by default for the load test")
	}
	if cfg.Engine.Audit.Enabled {
		t.Fatal("expected audit disabled by default")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, "loadtest.yaml", `
users: 50
concurrency: 4
ops: 200
metrics_format: otel
engine:
  otp:
    lifetime: 60s
    max_entries: 100
  session:
    lifetime: 2h
  audit:
    enabled: true
    buffer_size: 16
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Users != 50 || cfg.Concurrency != 4 || cfg.Ops != 200 {
		t.Fatalf("unexpected workload: %+v", cfg)
	}
	if cfg.MetricsFormat != "otel" {
		t.Fatalf("expected otel format, got %q", cfg.MetricsFormat)
	}
	if cfg.Engine.OTP.Lifetime != 60*time.Second || cfg.Engine.OTP.MaxEntries != 100 {
		t.Fatalf("unexpected OTP config: %+v", cfg.Engine.OTP)
	}
	if cfg.Engine.Session.Lifetime != 2*time.Hour {
		t.Fatalf("unexpected session lifetime: %s", cfg.Engine.Session.Lifetime)
	}
	if !cfg.Engine.Audit.Enabled || cfg.Engine.Audit.BufferSize != 16 {
		t.Fatalf("unexpected audit config: %+v", cfg.Engine.Audit)
	}
	if !cfg.Engine.Audit.DropIfFull {
		t.Fatal("expected unset drop_if_full to keep its default")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "loadtest.yaml", "users: 50\n")
	t.Setenv("EPHEMERAL_USERS", "7")
	t.Setenv("EPHEMERAL_ENGINE_SESSION_LIFETIME", "90s")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6390")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Users != 7 {
		t.Fatalf("expected env to override users, got %d", cfg.Users)
	}
	if cfg.Engine.Session.Lifetime != 90*time.Second {
		t.Fatalf("expected env session lifetime, got %s", cfg.Engine.Session.Lifetime)
	}
	if cfg.RedisAddr != "127.0.0.1:6390" {
		t.Fatalf("expected REDIS_ADDR fallback, got %q", cfg.RedisAddr)
	}
}

func TestLoadConfigRejectsInvalidEngineConfig(t *testing.T) {
	path := writeConfig(t, "loadtest.yaml", `
engine:
  otp:
    lifetime: 1500ms
`)

	_, err := loadConfig(path)
	if !errors.Is(err, goEphemeral.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadConfigRejectsBadWorkload(t *testing.T) {
	path := writeConfig(t, "loadtest.yaml", "concurrency: 0\n")
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for zero concurrency")
	}

	path = writeConfig(t, "loadtest.yaml", "metrics_format: statsd\n")
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for unknown metrics format")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
