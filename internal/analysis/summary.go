package analysis

import (
	"fmt"
	"strings"
)

// Summary is the statistics block handed to the AI prompt and printed by
// the CLI.
type Summary struct {
	Name                string          `json:"name,omitempty"`
	TotalRows           int             `json:"total_rows"`
	Dropped             int             `json:"dropped"`
	TotalEngagements    int64           `json:"total_engagements"`
	SentimentCounts     []CategoryCount `json:"sentiment_counts"`
	PlatformEngagements []CategoryTotal `json:"platform_engagements"`
	MediaTypeCounts     []CategoryCount `json:"media_type_counts"`
	TopLocations        []CategoryCount `json:"top_locations"`
	Trend               Direction       `json:"-"`
	TrendSummary        string          `json:"trend_summary"`
	Warnings            []string        `json:"warnings,omitempty"`
}

// Stats builds the statistics block. The trend compares the earliest and
// latest record rather than daily totals.
func Stats(ds *Dataset) *Summary {
	s := &Summary{TrendSummary: "No clear engagement trend."}
	if ds == nil {
		return s
	}
	s.Name = ds.Source
	s.TotalRows = ds.Len()
	s.Dropped = ds.Dropped
	s.Warnings = ds.Warnings
	s.TotalEngagements = TotalEngagements(ds)
	s.SentimentCounts = ValueCounts(ds, FieldSentiment)
	s.PlatformEngagements = SumBy(ds, FieldPlatform)
	s.MediaTypeCounts = ValueCounts(ds, FieldMediaType)
	s.TopLocations = topN(ValueCounts(ds, FieldLocation), 3)
	s.Trend = RecordTrend(ds)
	switch s.Trend {
	case DirectionIncreasing:
		s.TrendSummary = "There is an overall increasing engagement trend."
	case DirectionDecreasing:
		s.TrendSummary = "There is an overall decreasing engagement trend."
	}
	return s
}

// Markdown renders the summary and the chart insights for terminal output.
func (s *Summary) Markdown(in Insights) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d", s.TotalRows))
	if s.Dropped > 0 {
		b.WriteString(fmt.Sprintf(" (dropped %d with unparsable dates)", s.Dropped))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total engagements: %d\n\n", s.TotalEngagements))

	b.WriteString("[STATISTICS]\n")
	b.WriteString("- Sentiment: " + FormatCounts(s.SentimentCounts) + "\n")
	b.WriteString("- Platform engagements: " + FormatTotals(s.PlatformEngagements) + "\n")
	b.WriteString("- Media types: " + FormatCounts(s.MediaTypeCounts) + "\n")
	b.WriteString("- Top locations: " + FormatCounts(s.TopLocations) + "\n")
	b.WriteString("- Trend: " + s.TrendSummary + "\n")

	b.WriteString("\n[INSIGHTS]\n")
	for _, d := range Dimensions {
		lines := in.For(d)
		if len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s:\n", displayName(string(d))))
		for _, l := range lines {
			b.WriteString("- " + l + "\n")
		}
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range s.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

// FormatCounts renders counts as "A: 3, B: 1".
func FormatCounts(cs []CategoryCount) string {
	if len(cs) == 0 {
		return "none"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s: %d", c.Value, c.Count)
	}
	return strings.Join(parts, ", ")
}

// FormatTotals renders totals as "A: 300, B: 120".
func FormatTotals(ts []CategoryTotal) string {
	if len(ts) == 0 {
		return "none"
	}
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("%s: %d", t.Value, t.Total)
	}
	return strings.Join(parts, ", ")
}
