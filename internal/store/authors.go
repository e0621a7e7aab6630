package store

import (
	"encoding/json"
	"strings"
)

// encodeAuthors stores the author list as a JSON array. An empty list is
// stored as "[]" so decode never has to guess.
func encodeAuthors(authors []string) string {
	if len(authors) == 0 {
		return "[]"
	}
	b, err := json.Marshal(authors)
	if err != nil {
		// a []string cannot fail to marshal
		return "[]"
	}
	return string(b)
}

// decodeAuthors reads an author list back. Rows written before the JSON
// encoding hold a comma-joined string; anything that is not a JSON array
// falls back to a comma split.
func decodeAuthors(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var authors []string
		if err := json.Unmarshal([]byte(raw), &authors); err == nil {
			return authors
		}
	}

	var authors []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}
