// Package export writes new-paper reports, as Excel workbooks and as a
// static HTML page.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tanakalab/jtrack/internal/paper"
)

const sheetName = "New Papers"

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 30}, // Journal
	{"B", 10}, // Published
	{"C", 80}, // Title
	{"D", 50}, // Authors
	{"E", 25}, // DOI
	{"F", 50}, // URL
}

// ExcelExporter writes new papers to a dated workbook in OutputDir.
type ExcelExporter struct {
	outputDir string
	logger    *slog.Logger
}

func NewExcelExporter(outputDir string, logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{outputDir: outputDir, logger: logger}
}

// Export writes the papers to new_papers_YYYYMMDD.xlsx and returns the
// path. With no papers it writes nothing and returns an empty path. In
// dry-run mode the target path is computed and logged but the file is
// not written.
func (e *ExcelExporter) Export(papers []paper.Paper, dryRun bool) (string, error) {
	if len(papers) == 0 {
		e.logger.Info("no papers to export")
		return "", nil
	}

	filename := fmt.Sprintf("new_papers_%s.xlsx", time.Now().Format("20060102"))
	outputPath := filepath.Join(e.outputDir, filename)

	if dryRun {
		e.logger.Info("dry run, skipping workbook write", "path", outputPath, "papers", len(papers))
		return outputPath, nil
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	sorted := make([]paper.Paper, len(papers))
	copy(sorted, papers)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].JournalName != sorted[j].JournalName {
			return sorted[i].JournalName < sorted[j].JournalName
		}
		return sorted[i].Title < sorted[j].Title
	})

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	header := []interface{}{"Journal", "Published", "Title", "Authors", "DOI", "URL"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	for i, p := range sorted {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := []interface{}{
			p.JournalName,
			PublishedLabel(p),
			p.Title,
			AuthorsLabel(p),
			p.DOI,
			p.URL,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	for _, cw := range columnWidths {
		if err := f.SetColWidth(sheetName, cw.col, cw.col, cw.width); err != nil {
			return "", fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}

	e.logger.Info("exported papers", "count", len(papers), "path", outputPath)
	return outputPath, nil
}

// PublishedLabel renders the publication month as YYYY/MM, falling back
// to the date recovered from the abstract when the field is absent.
func PublishedLabel(p paper.Paper) string {
	if p.Published != nil {
		return p.Published.Format("2006/01")
	}
	return ExtractFromAbstract(p.Abstract).Published
}

// AuthorsLabel joins the author list, falling back to authors recovered
// from the abstract.
func AuthorsLabel(p paper.Paper) string {
	if len(p.Authors) > 0 {
		return strings.Join(p.Authors, ", ")
	}
	return ExtractFromAbstract(p.Abstract).Authors
}
