package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(GlobalFlags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Timeout != 10*time.Second || settings.Retries != 2 {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
	if !settings.CacheEnabled || settings.Verbose {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
}

func TestLoadFileAndFlagPrecedence(t *testing.T) {
	path := writeConfig(t, "api_base: https://staging.example\ntimeout: 30s\ndiagnostics: verbose\ncache:\n  enabled: false\n")
	settings, err := Load(GlobalFlags{ConfigPath: path, Timeout: "5s", Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.APIBaseURL != "https://staging.example" {
		t.Fatalf("file api_base not applied: %q", settings.APIBaseURL)
	}
	if settings.Timeout != 5*time.Second {
		t.Fatalf("flag must win over file, got %v", settings.Timeout)
	}
	if !settings.Verbose || settings.CacheEnabled {
		t.Fatalf("file settings not applied: %+v", settings)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api_base: https://file.example\n")
	t.Setenv(EnvAPIBase, "https://env.example")
	t.Setenv(EnvVerbose, "1")

	settings, err := Load(GlobalFlags{ConfigPath: path, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.APIBaseURL != "https://env.example" {
		t.Fatalf("env must win over file, got %q", settings.APIBaseURL)
	}
	if !settings.Verbose {
		t.Fatal("env verbose not applied")
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := writeConfig(t, "timeout: soon\n")
	if _, err := Load(GlobalFlags{ConfigPath: path, Retries: -1}); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}
