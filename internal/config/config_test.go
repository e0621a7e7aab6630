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
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/papers.db
journals:
  excel_path: /tmp/journals.xlsx
fetch:
  timeout_seconds: 15
  days_back: 14
  rate_limit_seconds: 0.5
  contact_email: lab@example.org
export:
  output_dir: /tmp/out
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/papers.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Fetch.DaysBack != 14 {
		t.Errorf("Fetch.DaysBack = %d, want 14", cfg.Fetch.DaysBack)
	}
	if got, want := cfg.Timeout(), 15*time.Second; got != want {
		t.Errorf("Timeout = %v, want %v", got, want)
	}
	if got, want := cfg.Pause(), 500*time.Millisecond; got != want {
		t.Errorf("Pause = %v, want %v", got, want)
	}
	if cfg.Fetch.ContactEmail != "lab@example.org" {
		t.Errorf("ContactEmail = %q", cfg.Fetch.ContactEmail)
	}
	// Unset sections keep defaults.
	if cfg.HTMLExport.OutputDir != "docs" {
		t.Errorf("HTMLExport.OutputDir = %q, want default", cfg.HTMLExport.OutputDir)
	}
	if cfg.Logs.OutputDir != "logs" {
		t.Errorf("Logs.OutputDir = %q, want default", cfg.Logs.OutputDir)
	}
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "data/papers.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.Fetch.DaysBack != 7 {
		t.Errorf("Fetch.DaysBack = %d, want default 7", cfg.Fetch.DaysBack)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load succeeded for missing explicit config, want error")
	}
}

func TestLoad_EnvOverridesEmail(t *testing.T) {
	path := writeConfig(t, `
fetch:
  contact_email: file@example.org
`)
	t.Setenv(ContactEmailEnv, "env@example.org")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.ContactEmail != "env@example.org" {
		t.Errorf("ContactEmail = %q, want env override", cfg.Fetch.ContactEmail)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero timeout", "fetch:\n  timeout_seconds: -1\n"},
		{"empty database path", "database:\n  path: \"\"\n"},
		{"negative rate limit", "fetch:\n  rate_limit_seconds: -0.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want validation error")
			}
		})
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := writeConfig(t, "fetch:\n  days_back: 30\n")
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.DaysBack != 30 {
		t.Errorf("DaysBack = %d, want 30 from env-pointed config", cfg.Fetch.DaysBack)
	}
}
