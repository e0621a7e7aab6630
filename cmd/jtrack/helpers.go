package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tanakalab/jtrack/internal/config"
	"github.com/tanakalab/jtrack/internal/logging"
)

// loadConfig reads the config file named by --config (or the default
// location) and builds the logger from its logging section.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg.Logging.Level, os.Stderr)
	return cfg, logger, nil
}

// exitWithError prints an error to stderr and exits with the given code.
func exitWithError(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}
