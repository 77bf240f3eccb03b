package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huddle.yaml")
	content := []byte(`server:
  port: 9090
  rate_limit_per_minute: 60
auth:
  jwt_secret: super-secret
  token_ttl: 2h
store:
  driver: postgres
  dsn: postgres://localhost/huddle
logging:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "super-secret" {
		t.Errorf("jwt_secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	// Unset fields keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("HUDDLE_TEST_SECRET", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "huddle.yaml")
	content := []byte("auth:\n  jwt_secret: ${HUDDLE_TEST_SECRET}\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt_secret = %q, want env expansion", cfg.Auth.JWTSecret)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huddle.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Store.Driver)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("2h", time.Minute); got != 2*time.Hour {
		t.Errorf("got %v", got)
	}
	if got := Duration("", time.Minute); got != time.Minute {
		t.Errorf("empty: got %v", got)
	}
	if got := Duration("bogus", time.Minute); got != time.Minute {
		t.Errorf("malformed: got %v", got)
	}
}
