// Package fetch sequences source adapters across the configured journals
// and aggregates per-run statistics.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/tanakalab/jtrack/internal/netclass"
	"github.com/tanakalab/jtrack/internal/paper"
)

// Failure describes a structural adapter failure for one source. Records
// already emitted before the failure are kept.
type Failure struct {
	Category netclass.Category
	Message  string
}

// Adapter converts one journal's external representation into papers.
// Parsed papers stream through emit as they are produced; the returned
// Failure, if any, describes why the source could not be fully drained.
type Adapter interface {
	Kind() string
	Fetch(ctx context.Context, journal paper.Journal, since time.Time, emit func(paper.Paper)) *Failure
}

// JournalFailure attributes one source's failure in the run report.
type JournalFailure struct {
	Journal  string            `json:"journal"`
	Adapter  string            `json:"adapter"`
	Category netclass.Category `json:"category"`
	Message  string            `json:"message,omitempty"`
}

// RunStats collects the outcome of a single FetchAll invocation.
type RunStats struct {
	FetchedCount    int              `json:"fetched_count"`
	FailedJournals  []JournalFailure `json:"failed_journals"`
	SkippedJournals []string         `json:"skipped_journals"`
}

// Orchestrator fetches journals strictly sequentially, isolating each
// source's failure from the others.
type Orchestrator struct {
	feed   Adapter
	api    Adapter
	pause  time.Duration
	logger *slog.Logger
}

// NewOrchestrator wires the two adapters. pause is the inter-source
// rate-limit interval; zero or negative disables pausing.
func NewOrchestrator(feed, api Adapter, pause time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{feed: feed, api: api, pause: pause, logger: logger}
}

// FetchAll drains every fetchable journal in list order, forwarding each
// paper to emit as it arrives. Sources without a usable fetch method are
// recorded as skipped. The returned stats are complete once FetchAll
// returns.
func (o *Orchestrator) FetchAll(ctx context.Context, journals []paper.Journal, since time.Time, emit func(paper.Paper)) *RunStats {
	stats := &RunStats{
		FailedJournals:  []JournalFailure{},
		SkippedJournals: []string{},
	}

	for i, journal := range journals {
		if ctx.Err() != nil {
			return stats
		}
		if i > 0 && !o.sleep(ctx) {
			return stats
		}

		adapter := o.pick(journal)
		if adapter == nil {
			o.logger.Warn("no fetch method available", "journal", journal.Name)
			stats.SkippedJournals = append(stats.SkippedJournals, journal.Name)
			continue
		}

		o.logger.Info("fetching papers", "journal", journal.Name, "adapter", adapter.Kind())

		failure := adapter.Fetch(ctx, journal, since, func(p paper.Paper) {
			stats.FetchedCount++
			emit(p)
		})
		if failure != nil {
			o.logger.Error("source fetch failed",
				"journal", journal.Name,
				"adapter", adapter.Kind(),
				"category", string(failure.Category),
				"error", failure.Message)
			stats.FailedJournals = append(stats.FailedJournals, JournalFailure{
				Journal:  journal.Name,
				Adapter:  adapter.Kind(),
				Category: failure.Category,
				Message:  failure.Message,
			})
		}
	}

	return stats
}

// pick selects the adapter for a journal: feed when usable, metadata API
// when a registry identifier is present, nil otherwise.
func (o *Orchestrator) pick(j paper.Journal) Adapter {
	if j.HasFeed() {
		return o.feed
	}
	if j.ISSN != "" {
		return o.api
	}
	return nil
}

// sleep pauses for the configured inter-source interval. It returns false
// when the context was cancelled during the pause.
func (o *Orchestrator) sleep(ctx context.Context) bool {
	if o.pause <= 0 {
		return true
	}
	timer := time.NewTimer(o.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
