package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanakalab/jtrack/internal/crossref"
	"github.com/tanakalab/jtrack/internal/export"
	"github.com/tanakalab/jtrack/internal/feed"
	"github.com/tanakalab/jtrack/internal/fetch"
	"github.com/tanakalab/jtrack/internal/journals"
	"github.com/tanakalab/jtrack/internal/paper"
	"github.com/tanakalab/jtrack/internal/report"
	"github.com/tanakalab/jtrack/internal/store"
)

var dryRun bool

func init() {
	fetchCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Fetch and report without writing exports or marking papers notified")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new papers from all tracked journals",
	Long: `Fetch new papers from every journal in the tracked list, save the ones
not seen before, and export them to Excel and the HTML page. A per-run
summary is written to the logs directory.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	started := time.Now()

	cfg, logger, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		exitWithError(ExitDataError, "opening store: %v", err)
	}
	defer st.Close()

	tracked, err := journals.Load(cfg.Journals.ExcelPath)
	if err != nil {
		exitWithError(ExitDataError, "loading journal list: %v", err)
	}
	logger.Info("journal list loaded", "journals", len(tracked))

	feedAdapter := feed.NewFetcher(cfg.Timeout(), logger)
	apiAdapter := crossref.NewFetcher(crossref.NewClient(
		crossref.WithTimeout(cfg.Timeout()),
		crossref.WithContact(cfg.Fetch.ContactEmail),
	), logger)
	orch := fetch.NewOrchestrator(feedAdapter, apiAdapter, cfg.Pause(), logger)

	since := time.Now().AddDate(0, 0, -cfg.Fetch.DaysBack)

	var fetched []paper.Paper
	stats := orch.FetchAll(cmd.Context(), tracked, since, func(p paper.Paper) {
		fetched = append(fetched, p)
	})
	logger.Info("fetch finished", "papers", len(fetched),
		"failed_journals", len(stats.FailedJournals), "skipped_journals", len(stats.SkippedJournals))

	newPapers, err := st.SaveBatch(fetched)
	if err != nil {
		exitWithError(ExitDataError, "saving papers: %v", err)
	}

	if len(newPapers) > 0 {
		exporter := export.NewExcelExporter(cfg.Export.OutputDir, logger)
		outputPath, err := exporter.Export(newPapers, dryRun)
		if err != nil {
			exitWithError(ExitError, "exporting papers: %v", err)
		}
		if !dryRun {
			if err := st.MarkNotified(newPapers); err != nil {
				exitWithError(ExitDataError, "marking papers notified: %v", err)
			}
		}
		fmt.Printf("%d new papers written to %s\n", len(newPapers), outputPath)
	} else {
		fmt.Println("No new papers.")
	}

	htmlExporter := report.NewHTMLExporter(cfg.HTMLExport.OutputDir, cfg.HTMLExport.DaysBack, logger)
	recent, err := st.GetRecent(htmlExporter.DaysBack())
	if err != nil {
		exitWithError(ExitDataError, "loading recent papers: %v", err)
	}
	if _, err := htmlExporter.Export(recent, tracked, dryRun); err != nil {
		exitWithError(ExitError, "exporting HTML: %v", err)
	}

	reportPath, err := report.WriteRunReport(cfg.Logs.OutputDir, report.RunReport{
		StartedAt:       started.Format(time.RFC3339),
		DurationSec:     time.Since(started).Seconds(),
		JournalsTotal:   len(tracked),
		FetchedCount:    stats.FetchedCount,
		InsertedCount:   len(newPapers),
		FailedJournals:  stats.FailedJournals,
		SkippedJournals: stats.SkippedJournals,
		DryRun:          dryRun,
	})
	if err != nil {
		exitWithError(ExitError, "writing run report: %v", err)
	}
	logger.Info("run report saved", "path", reportPath)

	return nil
}
