// Package journals loads the tracked journal list from an Excel workbook.
package journals

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tanakalab/jtrack/internal/paper"
)

// requiredColumns are the header names the workbook must carry, matched
// case-insensitively against the first row of the first sheet.
var requiredColumns = []string{
	"Journal Title",
	"Abbrev",
	"Publisher",
	"Journal URL",
	"RSS Feed",
	"Online ISSN",
	"Print ISSN",
	"Status",
}

// Load reads the journal list from the first sheet of the workbook at
// path. The header row is located by name, so column order does not
// matter; a missing required column is an error. Rows without a journal
// title are skipped.
func Load(path string) ([]paper.Journal, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal list %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("journal list %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("journal list %s is empty", path)
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("journal list %s: %w", path, err)
	}

	var journals []paper.Journal
	for _, row := range rows[1:] {
		j := paper.Journal{
			Name:       cell(row, cols["Journal Title"]),
			Abbrev:     cell(row, cols["Abbrev"]),
			Publisher:  cell(row, cols["Publisher"]),
			JournalURL: cell(row, cols["Journal URL"]),
			FeedURL:    cell(row, cols["RSS Feed"]),
			Status:     cell(row, cols["Status"]),
		}
		if j.Name == "" {
			continue
		}
		j.ISSN = pickISSN(cell(row, cols["Online ISSN"]), cell(row, cols["Print ISSN"]))
		journals = append(journals, j)
	}

	return journals, nil
}

func mapColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, name := range requiredColumns {
		idx, ok := byName[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// pickISSN prefers the online ISSN; the print ISSN is the fallback. A "-"
// placeholder counts as absent.
func pickISSN(online, print string) string {
	if online != "" && online != "-" {
		return online
	}
	if print != "" && print != "-" {
		return print
	}
	return ""
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
