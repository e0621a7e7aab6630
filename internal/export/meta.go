package export

import (
	"html"
	"regexp"
	"strings"
)

var monthNumbers = map[string]string{
	"january": "01", "february": "02", "march": "03", "april": "04",
	"may": "05", "june": "06", "july": "07", "august": "08",
	"september": "09", "october": "10", "november": "11", "december": "12",
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"jun": "06", "jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var (
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	fullDatePattern  = regexp.MustCompile(`^(\d{4})-(\d{2})-\d{2}`)
	yearMonthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})`)
	monthNamePattern = regexp.MustCompile(`^([A-Za-z]+)\s*(\d{4})`)
	pubDatePattern   = regexp.MustCompile(`(?i)Publication date:\s*([A-Za-z]+\s*\d{4})`)
	authorsPattern   = regexp.MustCompile(`(?i)Author\(s\):\s*([^<\n]+)`)
)

// AbstractMeta holds author and date information recovered from an
// abstract body. Some publishers put these into the feed description
// instead of proper feed fields.
type AbstractMeta struct {
	Authors   string
	Published string
}

// ExtractFromAbstract scans an abstract for "Author(s):" and
// "Publication date:" markers. Missing markers leave the field empty.
func ExtractFromAbstract(abstract string) AbstractMeta {
	var meta AbstractMeta
	if abstract == "" {
		return meta
	}

	text := html.UnescapeString(abstract)
	text = tagPattern.ReplaceAllString(text, " ")

	if m := pubDatePattern.FindStringSubmatch(text); m != nil {
		meta.Published = NormalizeDate(strings.TrimSpace(m[1]))
	}
	if m := authorsPattern.FindStringSubmatch(text); m != nil {
		meta.Authors = strings.TrimSpace(m[1])
	}

	return meta
}

// NormalizeDate rewrites a date string to YYYY/MM. It accepts
// YYYY-MM-DD, YYYY-MM, and "June 2026" style month names; anything else
// is returned unchanged.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}

	if m := fullDatePattern.FindStringSubmatch(s); m != nil {
		return m[1] + "/" + m[2]
	}
	if m := yearMonthPattern.FindStringSubmatch(s); m != nil {
		return m[1] + "/" + m[2]
	}
	if m := monthNamePattern.FindStringSubmatch(s); m != nil {
		month, ok := monthNumbers[strings.ToLower(m[1])]
		if !ok {
			month = "01"
		}
		return m[2] + "/" + month
	}

	return s
}
