// Package report renders the static HTML paper listing and the per-run
// summary file.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tanakalab/jtrack/internal/export"
	"github.com/tanakalab/jtrack/internal/paper"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("report").Parse(htmlTemplate))
}

// HTMLExporter renders recent papers, grouped by journal, to a single
// index.html suitable for static hosting.
type HTMLExporter struct {
	outputDir string
	daysBack  int
	logger    *slog.Logger
}

func NewHTMLExporter(outputDir string, daysBack int, logger *slog.Logger) *HTMLExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if daysBack <= 0 {
		daysBack = 7
	}
	return &HTMLExporter{outputDir: outputDir, daysBack: daysBack, logger: logger}
}

// DaysBack is the window of recent papers the page covers.
func (e *HTMLExporter) DaysBack() int {
	return e.daysBack
}

type paperView struct {
	Title        string
	Authors      string
	Published    string
	PublishedISO string
	FetchedISO   string
	DOI          string
	URL          string
}

type journalGroup struct {
	Name   string
	URL    string
	Papers []paperView
}

type pageData struct {
	GeneratedAt        string
	DaysBack           int
	TotalCount         int
	TotalJournals      int
	JournalsWithPapers int
	Groups             []journalGroup
}

// Export writes index.html into the output directory and returns its
// path. Journals without papers still get a section; papers from a
// journal missing in the tracked list are appended after it. In dry-run
// mode nothing is written.
func (e *HTMLExporter) Export(papers []paper.Paper, journals []paper.Journal, dryRun bool) (string, error) {
	outputPath := filepath.Join(e.outputDir, "index.html")

	if dryRun {
		e.logger.Info("dry run, skipping HTML write", "path", outputPath, "papers", len(papers))
		return outputPath, nil
	}

	data := buildPage(papers, journals, e.daysBack, time.Now())

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	e.logger.Info("exported HTML report", "papers", len(papers), "path", outputPath)
	return outputPath, nil
}

func buildPage(papers []paper.Paper, journals []paper.Journal, daysBack int, now time.Time) pageData {
	byJournal := map[string][]paperView{}
	for _, p := range papers {
		byJournal[p.JournalName] = append(byJournal[p.JournalName], toView(p))
	}

	var groups []journalGroup
	seen := map[string]bool{}
	for _, j := range journals {
		seen[j.Name] = true
		groups = append(groups, journalGroup{
			Name:   j.Name,
			URL:    j.JournalURL,
			Papers: byJournal[j.Name],
		})
	}

	var extra []string
	for name := range byJournal {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		groups = append(groups, journalGroup{Name: name, Papers: byJournal[name]})
	}

	withPapers := 0
	for _, g := range groups {
		if len(g.Papers) > 0 {
			withPapers++
		}
	}

	return pageData{
		GeneratedAt:        now.Format("2006-01-02 15:04"),
		DaysBack:           daysBack,
		TotalCount:         len(papers),
		TotalJournals:      len(groups),
		JournalsWithPapers: withPapers,
		Groups:             groups,
	}
}

func toView(p paper.Paper) paperView {
	v := paperView{
		Title:   p.Title,
		Authors: export.AuthorsLabel(p),
		DOI:     p.DOI,
		URL:     p.URL,
	}
	if p.Published != nil {
		v.Published = p.Published.Format("2006/01/02")
		v.PublishedISO = p.Published.Format("2006-01-02")
	} else {
		v.Published = export.ExtractFromAbstract(p.Abstract).Published
	}
	if p.FetchedAt != nil {
		v.FetchedISO = p.FetchedAt.Format("2006-01-02")
	}
	return v
}
