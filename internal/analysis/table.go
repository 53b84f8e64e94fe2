package analysis

import (
	"strings"
	"time"
)

// Table is a raw tabular input as produced by the ingest parsers: one header
// row and string cells. Rows may be shorter than the header.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no header or no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Header) == 0 || len(t.Rows) == 0
}

// normalizeColumn lower-cases a header and replaces spaces with underscores,
// so "Media Type" and "media type" both become "media_type".
func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// columnIndex maps normalized column names to their first position.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		n := normalizeColumn(h)
		if _, dup := idx[n]; dup {
			continue
		}
		idx[n] = i
	}
	return idx
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006", "01-02-2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
		"2006-01-02T15:04:05", "01-02-06", "Jan 2, 2006", "2 Jan 2006",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
