package charts

import (
	"time"

	"github.com/KaramelBytes/medintel/internal/analysis"
)

// Kind is the chart shape.
type Kind string

const (
	KindPie  Kind = "pie"
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Chart identifiers, in page order.
const (
	IDSentiment = "sentiment"
	IDTrend     = "engagement-trend"
	IDPlatform  = "platform"
	IDMediaType = "media-type"
	IDLocations = "locations"
)

// Spec is a renderer-agnostic chart description with its insights.
type Spec struct {
	ID        string             `json:"id"`
	Dimension analysis.Dimension `json:"dimension"`
	Kind      Kind               `json:"kind"`
	Title     string             `json:"title"`
	XLabel    string             `json:"x_label,omitempty"`
	YLabel    string             `json:"y_label,omitempty"`
	Labels    []string           `json:"labels"`
	Values    []float64          `json:"values"`
	Dates     []time.Time        `json:"dates,omitempty"`
	Colors    []string           `json:"colors"`
	Hole      float64            `json:"hole,omitempty"`
	Layout    Layout             `json:"layout"`
	Insights  []string           `json:"insights"`
}

// Build produces the five chart specs for a dataset: sentiment pie,
// engagement line, platform bar, media type pie and top locations bar.
// Each chart is computed independently from the dataset.
func Build(ds *analysis.Dataset, theme Theme) []Spec {
	in := analysis.Summarize(ds)
	layout := LayoutFor(theme)
	pal := theme.Palette()

	sentiment := analysis.ValueCounts(ds, analysis.FieldSentiment)
	days := analysis.DailyEngagements(ds)
	platforms := analysis.SumBy(ds, analysis.FieldPlatform)
	media := analysis.ValueCounts(ds, analysis.FieldMediaType)
	locations := analysis.ValueCounts(ds, analysis.FieldLocation)
	if len(locations) > analysis.TopLocations {
		locations = locations[:analysis.TopLocations]
	}

	trend := Spec{
		ID: IDTrend, Dimension: analysis.DimTrend, Kind: KindLine,
		Title: "Engagement Trend over Time", XLabel: "Date", YLabel: "Engagements",
		Colors: []string{pal[0]}, Layout: layout, Insights: in.Trend,
	}
	for _, d := range days {
		trend.Dates = append(trend.Dates, d.Date)
		trend.Labels = append(trend.Labels, d.Date.Format("2006-01-02"))
		trend.Values = append(trend.Values, float64(d.Engagements))
	}

	platform := Spec{
		ID: IDPlatform, Dimension: analysis.DimPlatform, Kind: KindBar,
		Title: "Total Engagement per Platform", XLabel: "Platform", YLabel: "Engagements",
		Colors: []string{pal[1]}, Layout: layout, Insights: in.Platform,
	}
	for _, p := range platforms {
		platform.Labels = append(platform.Labels, p.Value)
		platform.Values = append(platform.Values, float64(p.Total))
	}

	loc := Spec{
		ID: IDLocations, Dimension: analysis.DimLocation, Kind: KindBar,
		Title: "Top 5 Locations by Activity Count", XLabel: "Location", YLabel: "Count",
		Colors: []string{pal[2]}, Layout: layout, Insights: in.Location,
	}
	loc.Labels, loc.Values = countSeries(locations)

	sent := Spec{
		ID: IDSentiment, Dimension: analysis.DimSentiment, Kind: KindPie,
		Title: "Sentiment Distribution", Hole: 0.4,
		Colors: theme.sentimentRamp(), Layout: layout, Insights: in.Sentiment,
	}
	sent.Labels, sent.Values = countSeries(sentiment)

	mix := Spec{
		ID: IDMediaType, Dimension: analysis.DimMediaType, Kind: KindPie,
		Title: "Media Type Mix", Hole: 0.4,
		Colors: theme.mediaRamp(), Layout: layout, Insights: in.MediaType,
	}
	mix.Labels, mix.Values = countSeries(media)

	return []Spec{sent, trend, platform, mix, loc}
}

// Find returns the spec with the given id.
func Find(specs []Spec, id string) (Spec, bool) {
	for _, s := range specs {
		if s.ID == id {
			return s, true
		}
	}
	return Spec{}, false
}

func countSeries(cs []analysis.CategoryCount) ([]string, []float64) {
	labels := make([]string, len(cs))
	values := make([]float64, len(cs))
	for i, c := range cs {
		labels[i] = c.Value
		values[i] = float64(c.Count)
	}
	return labels, values
}
