package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tanakalab/jtrack/internal/fetch"
)

// RunReport is the machine-readable summary of one fetch run.
type RunReport struct {
	StartedAt            string                 `json:"started_at"`
	DurationSec          float64                `json:"duration_sec"`
	JournalsTotal        int                    `json:"journals_total"`
	FetchedCount         int                    `json:"fetched_count"`
	InsertedCount        int                    `json:"inserted_count"`
	FailedJournals       []fetch.JournalFailure `json:"failed_journals"`
	FailedJournalsCount  int                    `json:"failed_journals_count"`
	SkippedJournals      []string               `json:"skipped_journals"`
	SkippedJournalsCount int                    `json:"skipped_journals_count"`
	DryRun               bool                   `json:"dry_run"`
}

// WriteRunReport saves the report as run_report_<timestamp>.json in dir
// and returns the path.
func WriteRunReport(dir string, r RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	if r.FailedJournals == nil {
		r.FailedJournals = []fetch.JournalFailure{}
	}
	if r.SkippedJournals == nil {
		r.SkippedJournals = []string{}
	}
	r.FailedJournalsCount = len(r.FailedJournals)
	r.SkippedJournalsCount = len(r.SkippedJournals)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_report_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}
	return path, nil
}
