package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tanakalab/jtrack/internal/journals"
	"github.com/tanakalab/jtrack/internal/store"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify config, journal list, database, and output directories",
	Long: `Run a self check: the journal list must exist with its required
columns, the database must open and migrate, and every output directory
must be writable.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var issues []string

	if _, err := journals.Load(cfg.Journals.ExcelPath); err != nil {
		issues = append(issues, fmt.Sprintf("journal list: %v", err))
	}

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		issues = append(issues, fmt.Sprintf("database: %v", err))
	} else {
		st.Close()
	}

	for _, dir := range []struct{ label, path string }{
		{"export output", cfg.Export.OutputDir},
		{"HTML output", cfg.HTMLExport.OutputDir},
		{"logs output", cfg.Logs.OutputDir},
	} {
		if err := checkWritable(dir.path); err != nil {
			issues = append(issues, fmt.Sprintf("%s directory %s: %v", dir.label, dir.path, err))
		}
	}

	if len(issues) > 0 {
		fmt.Println("Self check: NG")
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
		os.Exit(ExitError)
	}

	fmt.Println("Self check: OK")
	return nil
}

// checkWritable creates the directory if needed and probes it with a
// temporary file.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".write_check_")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
