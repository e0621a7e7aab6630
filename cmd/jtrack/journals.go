package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanakalab/jtrack/internal/journals"
)

func init() {
	rootCmd.AddCommand(journalsCmd)
}

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List tracked journals and their fetch method",
	RunE:  runJournals,
}

func runJournals(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	tracked, err := journals.Load(cfg.Journals.ExcelPath)
	if err != nil {
		exitWithError(ExitDataError, "loading journal list: %v", err)
	}

	fmt.Printf("%d journals tracked\n\n", len(tracked))
	for _, j := range tracked {
		method := "skip"
		switch {
		case j.HasFeed():
			method = "feed"
		case j.ISSN != "":
			method = "crossref"
		}
		fmt.Printf("  [%-8s] %-10s %s\n", method, j.Abbrev, j.Name)
	}

	return nil
}
