package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":3000" || cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.APITimeout != 8*time.Second || cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("unexpected durations: %v %v", cfg.APITimeout, cfg.SessionTTL)
	}
	if !cfg.AuthRequired || cfg.SessionStore != StoreMemory {
		t.Fatalf("expected auth required with memory sessions: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://backend:9000/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("AUTH_REQUIRED", "false")
	t.Setenv("SESSION_STORE", "REDIS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://backend:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 3*time.Second || cfg.AuthRequired || cfg.SessionStore != StoreRedis {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "barberdesk.yaml")
	content := "CLIENT_ADDR: \":4000\"\nLOGIN_RATE_PER_MIN: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.Addr != ":4000" || cfg.LoginRatePerMin != 5 {
		t.Fatalf("unexpected file values: %+v", cfg)
	}
}

func TestValidateTokenStoreNeedsSecret(t *testing.T) {
	t.Setenv("SESSION_STORE", "token")
	t.Setenv("SESSION_SECRET", "short")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected secret error, got %v", err)
	}
	t.Setenv("SESSION_STORE", "disk")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SESSION_STORE") {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestValidateRejectsUnknownTimeZone(t *testing.T) {
	t.Setenv("TIME_ZONE", "Europe/Atlantida")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TIME_ZONE") {
		t.Fatalf("expected time zone error, got %v", err)
	}
	t.Setenv("TIME_ZONE", "Atlantic/Canary")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Location().String() != "Atlantic/Canary" {
		t.Fatalf("unexpected location %v", cfg.Location())
	}
}

func TestTrustProxyDefaultsOff(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TrustProxy {
		t.Fatalf("expected forwarded headers to be ignored by default")
	}
	t.Setenv("TRUST_PROXY", "true")
	if cfg, err = Load(); err != nil || !cfg.TrustProxy {
		t.Fatalf("expected TRUST_PROXY override, got %+v %v", cfg, err)
	}
}
