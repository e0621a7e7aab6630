package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tanakalab/jtrack/internal/store"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show paper counts for the local database",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		exitWithError(ExitDataError, "opening store: %v", err)
	}
	defer st.Close()

	stats, err := st.GetStats()
	if err != nil {
		exitWithError(ExitDataError, "reading stats: %v", err)
	}

	fmt.Printf("Total papers:  %d\n", stats.Total)
	fmt.Printf("Notified:      %d\n", stats.Notified)
	fmt.Printf("Unnotified:    %d\n", stats.Unnotified)

	if len(stats.ByJournal) > 0 {
		fmt.Println("\nBy journal:")
		names := make([]string, 0, len(stats.ByJournal))
		for name := range stats.ByJournal {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-40s %d\n", name, stats.ByJournal[name])
		}
	}

	return nil
}
