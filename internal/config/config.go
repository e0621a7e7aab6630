// Package config handles application configuration from config.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location used when none is given.
const DefaultPath = "config/config.yaml"

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "JTRACK_CONFIG"

// ContactEmailEnv overrides fetch.contact_email. The address is sent to
// the metadata API in the User-Agent to get polite-pool treatment.
const ContactEmailEnv = "CROSSREF_EMAIL"

// Config is the full application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Journals   JournalsConfig   `yaml:"journals"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Export     ExportConfig     `yaml:"export"`
	HTMLExport HTMLExportConfig `yaml:"html_export"`
	Logs       LogsConfig       `yaml:"logs"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type JournalsConfig struct {
	ExcelPath string `yaml:"excel_path"`
}

type FetchConfig struct {
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
	DaysBack         int     `yaml:"days_back"`
	RateLimitSeconds float64 `yaml:"rate_limit_seconds"`
	ContactEmail     string  `yaml:"contact_email"`
}

type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

type HTMLExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	DaysBack  int    `yaml:"days_back"`
}

type LogsConfig struct {
	OutputDir string `yaml:"output_dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when fields are left unset.
func Default() *Config {
	return &Config{
		Database:   DatabaseConfig{Path: "data/papers.db"},
		Journals:   JournalsConfig{ExcelPath: "data/journals.xlsx"},
		Fetch:      FetchConfig{TimeoutSeconds: 30, DaysBack: 7, RateLimitSeconds: 1.0},
		Export:     ExportConfig{OutputDir: "output"},
		HTMLExport: HTMLExportConfig{OutputDir: "docs", DaysBack: 7},
		Logs:       LogsConfig{OutputDir: "logs"},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration at path, or the default location when
// path is empty. A missing file at the default location yields the
// defaults; an explicitly named file must exist. Environment variables
// are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv(ConfigPathEnv); env != "" {
			path = env
			explicit = true
		} else {
			path = DefaultPath
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg.applyEnv()
			if err := cfg.validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if email := os.Getenv(ContactEmailEnv); email != "" {
		c.Fetch.ContactEmail = email
	}
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Journals.ExcelPath == "" {
		return fmt.Errorf("journals.excel_path must not be empty")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Fetch.DaysBack <= 0 {
		return fmt.Errorf("fetch.days_back must be positive, got %d", c.Fetch.DaysBack)
	}
	if c.Fetch.RateLimitSeconds < 0 {
		return fmt.Errorf("fetch.rate_limit_seconds must not be negative, got %v", c.Fetch.RateLimitSeconds)
	}
	return nil
}

// Timeout returns the per-request fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Pause returns the delay inserted between journal fetches.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.Fetch.RateLimitSeconds * float64(time.Second))
}
