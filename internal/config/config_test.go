package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewDefault(t *testing.T) {
	t.Setenv("ENVAULT_SERVER", "")
	cfg := NewDefault()

	if cfg.Server.URL != "http://localhost:8000" {
		t.Fatalf("default server URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 30 {
		t.Fatalf("default timeout = %d", cfg.Server.TimeoutSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestNewDefaultHonorsServerEnv(t *testing.T) {
	t.Setenv("ENVAULT_SERVER", "https://vault.internal:9443")
	cfg := NewDefault()
	if cfg.Server.URL != "https://vault.internal:9443" {
		t.Fatalf("env override ignored: %q", cfg.Server.URL)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  url: https://vault.example.com
  timeout_seconds: 10
log:
  level: debug
`)
	cfg := NewDefault()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://vault.example.com" {
		t.Fatalf("server URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout().Seconds() != 10 {
		t.Fatalf("timeout = %v", cfg.Server.Timeout())
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Fatalf("log level = %v", cfg.Log.SlogLevel())
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("VAULT_HOST", "vault.example.com")
	path := writeConfig(t, "server:\n  url: https://$VAULT_HOST\n")

	cfg := NewDefault()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://vault.example.com" {
		t.Fatalf("env expansion failed: %q", cfg.Server.URL)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	cfg := NewDefault()
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), cfg)
	if err == nil {
		t.Fatalf("an explicitly named missing file must be an error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty url", "server:\n  url: \"\"\n"},
		{"timeout too large", "server:\n  url: http://x\n  timeout_seconds: 9999\n"},
		{"bad log level", "log:\n  level: shout\n"},
		{"malformed yaml", "server: [unclosed\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefault()
			if err := Load(writeConfig(t, tc.body), cfg); err == nil {
				t.Fatalf("expected a validation error")
			}
		})
	}
}

func TestSlogLevelMapping(t *testing.T) {
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for name, want := range levels {
		lc := LogConfig{Level: name}
		if got := lc.SlogLevel(); got != want {
			t.Fatalf("level %q mapped to %v, want %v", name, got, want)
		}
	}
}
