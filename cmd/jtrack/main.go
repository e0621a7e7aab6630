// Package main provides the jtrack CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// configPath is the --config flag value, empty for the default lookup.
var configPath string

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jtrack",
	Short: "Journal article tracker",
	Long: `jtrack tracks newly published articles across a list of academic journals.

It pulls each journal's RSS/Atom feed when one exists and falls back to
the CrossRef works API otherwise, deduplicates against a local SQLite
database, and writes new papers to Excel and a static HTML page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.Version = Version
}
