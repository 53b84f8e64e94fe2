package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SchemaError reports a mandatory column missing from the input.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: no %s column", displayName(e.Column))
}

// ErrNoValidRows is returned when cleaning leaves no usable rows.
var ErrNoValidRows = errors.New("no valid rows after cleaning")

// WarnNoEngagements is recorded when the input carries no engagements column.
const WarnNoEngagements = "Engagements column not found; all engagements set to 0"

const (
	colDate        = "date"
	colEngagements = "engagements"
)

// Clean validates and coerces a raw table into a Dataset.
//
// On a missing date column it returns an empty Dataset and a *SchemaError.
// Rows whose date does not parse are dropped and counted. When no rows
// survive, the empty Dataset is returned together with ErrNoValidRows.
func Clean(t *Table) (*Dataset, error) {
	ds := &Dataset{}
	if t == nil {
		return ds, &SchemaError{Column: colDate}
	}
	ds.Source = t.Name
	idx := columnIndex(t.Header)

	dateIdx, ok := idx[colDate]
	if !ok {
		return ds, &SchemaError{Column: colDate}
	}
	engIdx, hasEng := idx[colEngagements]
	if !hasEng {
		ds.Warnings = append(ds.Warnings, WarnNoEngagements)
	}

	for _, row := range t.Rows {
		d, ok := parseTimeMaybe(cell(row, dateIdx))
		if !ok {
			ds.Dropped++
			continue
		}
		rec := Record{Date: truncateDay(d)}
		if hasEng {
			rec.Engagements = parseEngagements(cell(row, engIdx))
		}
		for _, f := range CategoricalFields {
			v := Unknown
			if i, ok := idx[string(f)]; ok {
				if s := strings.TrimSpace(cell(row, i)); s != "" {
					v = s
				}
			}
			rec.set(f, v)
		}
		ds.Records = append(ds.Records, rec)
	}

	if len(ds.Records) == 0 {
		return ds, ErrNoValidRows
	}
	return ds, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseEngagements coerces a cell to a non-negative integer count.
// Blank or unparsable values become 0; fractional values are truncated.
func parseEngagements(s string) int64 {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, "_", "")
	// "1,500" and "1,500.5" use ',' as a thousands separator
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ",", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	// float64(MaxInt64) rounds up to 2^63
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

func displayName(col string) string {
	parts := strings.Split(col, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
