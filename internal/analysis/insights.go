package analysis

import "fmt"

// Dimension identifies one of the five charted aspects of a dataset.
type Dimension string

const (
	DimSentiment Dimension = "sentiment"
	DimTrend     Dimension = "trend"
	DimPlatform  Dimension = "platform"
	DimMediaType Dimension = "media_type"
	DimLocation  Dimension = "location"
)

// Dimensions lists the dimensions in chart order.
var Dimensions = []Dimension{DimSentiment, DimTrend, DimPlatform, DimMediaType, DimLocation}

// TopLocations is the number of locations charted and summarized.
const TopLocations = 5

// Insights holds up to three observations per dimension.
type Insights struct {
	Sentiment []string `json:"sentiment"`
	Trend     []string `json:"trend"`
	Platform  []string `json:"platform"`
	MediaType []string `json:"media_type"`
	Location  []string `json:"location"`
}

// For returns the observations for one dimension.
func (in Insights) For(d Dimension) []string {
	switch d {
	case DimSentiment:
		return in.Sentiment
	case DimTrend:
		return in.Trend
	case DimPlatform:
		return in.Platform
	case DimMediaType:
		return in.MediaType
	case DimLocation:
		return in.Location
	}
	return nil
}

// Summarize derives the per-dimension observations for a dataset. It is a
// pure function; calling it twice on the same dataset yields identical strings.
func Summarize(ds *Dataset) Insights {
	return Insights{
		Sentiment: sentimentInsights(ValueCounts(ds, FieldSentiment)),
		Trend:     trendInsights(DailyEngagements(ds)),
		Platform:  platformInsights(SumBy(ds, FieldPlatform)),
		MediaType: mediaTypeInsights(ValueCounts(ds, FieldMediaType)),
		Location:  locationInsights(topN(ValueCounts(ds, FieldLocation), TopLocations)),
	}
}

func sentimentInsights(counts []CategoryCount) []string {
	if len(counts) == 0 {
		return []string{"No sentiment data."}
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := []string{fmt.Sprintf("'%s' is the dominant sentiment, accounting for %s of the total.",
		counts[0].Value, percent(counts[0].Count, total))}
	if len(counts) > 1 {
		out = append(out, fmt.Sprintf("The second most common sentiment is '%s'.", counts[1].Value))
	}
	if len(counts) > 2 {
		out = append(out, fmt.Sprintf("There is a notable gap between the top two sentiments and '%s'.", counts[2].Value))
	}
	return out
}

func trendInsights(days []DayTotal) []string {
	if len(days) < 2 {
		return []string{"Not enough data to determine an engagement trend."}
	}
	var out []string
	switch DailyTrend(days) {
	case DirectionIncreasing:
		out = append(out, "Overall, engagement shows an increasing trend over time.")
	case DirectionDecreasing:
		out = append(out, "Overall, engagement shows a decreasing trend over time.")
	default:
		out = append(out, "Engagement remained stable over the observed period.")
	}
	peak, low := peakAndLow(days)
	out = append(out,
		fmt.Sprintf("Peak engagement was recorded on %s with %d engagements.", peak.Date.Format("2006-01-02"), peak.Engagements),
		fmt.Sprintf("The lowest engagement was observed on %s with %d engagements.", low.Date.Format("2006-01-02"), low.Engagements),
	)
	return out
}

func platformInsights(totals []CategoryTotal) []string {
	if len(totals) == 0 {
		return []string{"No platform data."}
	}
	out := []string{fmt.Sprintf("'%s' is the best-performing platform by total engagement, showing strong reach.", totals[0].Value)}
	if len(totals) > 1 {
		out = append(out, fmt.Sprintf("'%s' follows as the platform with the second-highest engagement.", totals[1].Value))
	}
	if len(totals) > 2 {
		out = append(out, fmt.Sprintf("Engagement drops significantly after the top two platforms, with '%s' trailing behind.", totals[2].Value))
	}
	return out
}

func mediaTypeInsights(counts []CategoryCount) []string {
	if len(counts) == 0 {
		return []string{"No media type data."}
	}
	out := []string{fmt.Sprintf("The most frequently used media type is '%s', making it the primary content format.", counts[0].Value)}
	if len(counts) > 1 {
		out = append(out, fmt.Sprintf("'%s' represents the second-largest media share.", counts[1].Value))
	}
	if len(counts) > 2 {
		out = append(out, fmt.Sprintf("The media mix is diverse, with '%s' making a moderate contribution.", counts[2].Value))
	}
	return out
}

func locationInsights(counts []CategoryCount) []string {
	if len(counts) == 0 {
		return []string{"No location data."}
	}
	out := []string{fmt.Sprintf("'%s' is the most active location, showing a high concentration of media activity.", counts[0].Value)}
	if len(counts) > 1 {
		out = append(out, fmt.Sprintf("'%s' ranks second, marking another key geographic area for media activity.", counts[1].Value))
	}
	if len(counts) > 2 {
		out = append(out, fmt.Sprintf("The top three locations, including '%s', together account for a significant share of recorded activity.", counts[2].Value))
	}
	return out
}

// PromptInsights returns up to four one-line observations for an AI prompt:
// dominant sentiment, top platform, most frequent media type and most
// active location.
func PromptInsights(ds *Dataset) []string {
	if ds.Empty() {
		return nil
	}
	var out []string
	if c := ValueCounts(ds, FieldSentiment); len(c) > 0 {
		out = append(out, fmt.Sprintf("Sentiment analysis shows that '%s' is dominant.", c[0].Value))
	}
	if t := SumBy(ds, FieldPlatform); len(t) > 0 {
		out = append(out, fmt.Sprintf("Platform '%s' has the highest engagement.", t[0].Value))
	}
	if c := ValueCounts(ds, FieldMediaType); len(c) > 0 {
		out = append(out, fmt.Sprintf("Media type '%s' is the most frequent.", c[0].Value))
	}
	if c := ValueCounts(ds, FieldLocation); len(c) > 0 {
		out = append(out, fmt.Sprintf("Location '%s' is the most active.", c[0].Value))
	}
	return out
}

// ReportBullets recomputes one bullet per dimension for the exported report.
// The trend bullet is omitted when fewer than two days are present.
func ReportBullets(ds *Dataset) []string {
	if ds.Empty() {
		return nil
	}
	var out []string
	if c := ValueCounts(ds, FieldSentiment); len(c) > 0 {
		out = append(out, fmt.Sprintf("Sentiment '%s' is the most dominant.", c[0].Value))
	}
	if days := DailyEngagements(ds); len(days) > 1 {
		if DailyTrend(days) == DirectionIncreasing {
			out = append(out, "Overall, engagement shows an increasing trend.")
		} else {
			out = append(out, "The engagement trend is relatively stable or decreasing.")
		}
	}
	if t := SumBy(ds, FieldPlatform); len(t) > 0 {
		out = append(out, fmt.Sprintf("Platform '%s' is the best-performing platform.", t[0].Value))
	}
	if c := ValueCounts(ds, FieldMediaType); len(c) > 0 {
		out = append(out, fmt.Sprintf("The most frequently used media type is '%s'.", c[0].Value))
	}
	if c := ValueCounts(ds, FieldLocation); len(c) > 0 {
		out = append(out, fmt.Sprintf("The most active location is '%s'.", c[0].Value))
	}
	return out
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
