package journals

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook writes a journal list workbook with the given header and
// data rows and returns its path.
func writeWorkbook(t *testing.T, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range header {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			t.Fatalf("setting header cell: %v", err)
		}
	}
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cellName, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cellName, val); err != nil {
				t.Fatalf("setting cell: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "journals.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

var testHeader = []string{
	"Journal Title", "Abbrev", "Publisher", "Journal URL",
	"RSS Feed", "Online ISSN", "Print ISSN", "Status",
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, testHeader, [][]string{
		{"Journal of Results", "J Results", "Acme Press", "https://results.example.org",
			"https://results.example.org/rss", "1234-5678", "8765-4321", "Working"},
		{"Quiet Review", "Q Rev", "Acme Press", "https://quiet.example.org",
			"-", "-", "2222-3333", "Working"},
		{"", "", "", "", "", "", "", ""},
	})

	journals, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(journals) != 2 {
		t.Fatalf("got %d journals, want 2", len(journals))
	}

	first := journals[0]
	if first.Name != "Journal of Results" {
		t.Errorf("Name = %q, want %q", first.Name, "Journal of Results")
	}
	if first.FeedURL != "https://results.example.org/rss" {
		t.Errorf("FeedURL = %q", first.FeedURL)
	}
	if first.ISSN != "1234-5678" {
		t.Errorf("ISSN = %q, want online ISSN preferred", first.ISSN)
	}
	if !first.HasFeed() {
		t.Error("HasFeed = false, want true")
	}

	second := journals[1]
	if second.ISSN != "2222-3333" {
		t.Errorf("ISSN = %q, want print ISSN fallback", second.ISSN)
	}
	if second.HasFeed() {
		t.Error("HasFeed = true for placeholder feed, want false")
	}
}

func TestLoad_ColumnOrderIndependent(t *testing.T) {
	header := []string{
		"Status", "Print ISSN", "Online ISSN", "RSS Feed",
		"Journal URL", "Publisher", "Abbrev", "Journal Title",
	}
	path := writeWorkbook(t, header, [][]string{
		{"Working", "8765-4321", "1234-5678", "https://r.example.org/rss",
			"https://r.example.org", "Acme Press", "J Results", "Journal of Results"},
	})

	journals, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(journals) != 1 {
		t.Fatalf("got %d journals, want 1", len(journals))
	}
	if journals[0].Name != "Journal of Results" {
		t.Errorf("Name = %q, want %q", journals[0].Name, "Journal of Results")
	}
	if journals[0].FeedURL != "https://r.example.org/rss" {
		t.Errorf("FeedURL = %q", journals[0].FeedURL)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	header := []string{"Journal Title", "Abbrev", "Publisher", "Journal URL", "Online ISSN", "Print ISSN", "Status"}
	path := writeWorkbook(t, header, nil)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load succeeded with missing column, want error")
	}
	if !strings.Contains(err.Error(), "RSS Feed") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xlsx"))
	if err == nil {
		t.Fatal("Load succeeded for missing file, want error")
	}
}
