package export

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tanakalab/jtrack/internal/paper"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"2026-08-15", "2026/08"},
		{"2026-08", "2026/08"},
		{"June 2026", "2026/06"},
		{"june 2026", "2026/06"},
		{"Sep 2026", "2026/09"},
		{"Vendredi 2026", "2026/01"},
		{"sometime soon", "sometime soon"},
	}

	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractFromAbstract(t *testing.T) {
	abstract := `<p>Publication date: June 2026</p>` +
		`<p>Author(s): Alice Smith, Bob Jones</p>` +
		`<p>Findings were significant.</p>`

	meta := ExtractFromAbstract(abstract)
	if meta.Published != "2026/06" {
		t.Errorf("Published = %q, want %q", meta.Published, "2026/06")
	}
	if meta.Authors != "Alice Smith, Bob Jones" {
		t.Errorf("Authors = %q, want %q", meta.Authors, "Alice Smith, Bob Jones")
	}

	empty := ExtractFromAbstract("")
	if empty.Authors != "" || empty.Published != "" {
		t.Errorf("empty abstract = %+v, want zero value", empty)
	}

	plain := ExtractFromAbstract("Just an ordinary abstract with no markers.")
	if plain.Authors != "" || plain.Published != "" {
		t.Errorf("plain abstract = %+v, want zero value", plain)
	}
}

func TestExtractFromAbstract_Entities(t *testing.T) {
	abstract := "Publication date:&nbsp;March 2026. Author(s): Tanaka &amp; Sato"
	meta := ExtractFromAbstract(abstract)
	if meta.Published != "2026/03" {
		t.Errorf("Published = %q, want %q", meta.Published, "2026/03")
	}
	if meta.Authors != "Tanaka & Sato" {
		t.Errorf("Authors = %q, want %q", meta.Authors, "Tanaka & Sato")
	}
}

func TestExcelExport(t *testing.T) {
	dir := t.TempDir()
	e := NewExcelExporter(dir, discardLogger())

	papers := []paper.Paper{
		{
			Title:       "Zeta Study",
			JournalName: "Journal B",
			Authors:     []string{"Alice Smith"},
			DOI:         "10.1/zeta",
			URL:         "https://example.org/zeta",
			Published:   datePtr(2026, 8, 15),
		},
		{
			Title:       "Alpha Study",
			JournalName: "Journal A",
			Abstract:    "Publication date: June 2026. Author(s): Bob Jones",
			DOI:         "10.1/alpha",
		},
	}

	path, err := e.Export(papers, false)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantName := "new_papers_" + time.Now().Format("20060102") + ".xlsx"
	if filepath.Base(path) != wantName {
		t.Errorf("filename = %q, want %q", filepath.Base(path), wantName)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("New Papers")
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	// Sorted by journal then title; abstract fallbacks applied.
	if rows[1][0] != "Journal A" || rows[1][2] != "Alpha Study" {
		t.Errorf("row 1 = %v, want Journal A / Alpha Study first", rows[1])
	}
	if rows[1][1] != "2026/06" {
		t.Errorf("row 1 published = %q, want %q from abstract", rows[1][1], "2026/06")
	}
	if rows[1][3] != "Bob Jones" {
		t.Errorf("row 1 authors = %q, want %q from abstract", rows[1][3], "Bob Jones")
	}
	if rows[2][1] != "2026/08" {
		t.Errorf("row 2 published = %q, want %q", rows[2][1], "2026/08")
	}
}

func TestExcelExport_Empty(t *testing.T) {
	e := NewExcelExporter(t.TempDir(), discardLogger())
	path, err := e.Export(nil, false)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for no papers", path)
	}
}

func TestExcelExport_DryRun(t *testing.T) {
	dir := t.TempDir()
	e := NewExcelExporter(dir, discardLogger())

	papers := []paper.Paper{{Title: "A", JournalName: "Journal A"}}
	path, err := e.Export(papers, true)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if path == "" {
		t.Fatal("dry run returned empty path")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dry run wrote a file at %s", path)
	}
}
