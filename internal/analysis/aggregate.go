package analysis

import (
	"math"
	"sort"
	"time"
)

// CategoryCount is a category and the number of records carrying it.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoryTotal is a category and its summed engagements.
type CategoryTotal struct {
	Value string `json:"value"`
	Total int64  `json:"total"`
}

// DayTotal is the summed engagements of one calendar day.
type DayTotal struct {
	Date        time.Time `json:"date"`
	Engagements int64     `json:"engagements"`
}

// ValueCounts counts records per category of f, most frequent first.
// Ties keep the order in which categories first appear.
func ValueCounts(ds *Dataset, f Field) []CategoryCount {
	if ds.Empty() {
		return nil
	}
	pos := map[string]int{}
	var out []CategoryCount
	for _, r := range ds.Records {
		v := r.Get(f)
		if i, ok := pos[v]; ok {
			out[i].Count++
			continue
		}
		pos[v] = len(out)
		out = append(out, CategoryCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// SumBy sums engagements per category of f, highest total first.
// Ties are ordered by category name.
func SumBy(ds *Dataset, f Field) []CategoryTotal {
	if ds.Empty() {
		return nil
	}
	sums := map[string]int64{}
	for _, r := range ds.Records {
		k := r.Get(f)
		sums[k] = addSat(sums[k], r.Engagements)
	}
	out := make([]CategoryTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, CategoryTotal{Value: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// DailyEngagements sums engagements per calendar day in chronological order.
func DailyEngagements(ds *Dataset) []DayTotal {
	if ds.Empty() {
		return nil
	}
	sums := map[time.Time]int64{}
	for _, r := range ds.Records {
		d := truncateDay(r.Date)
		sums[d] = addSat(sums[d], r.Engagements)
	}
	out := make([]DayTotal, 0, len(sums))
	for d, v := range sums {
		out = append(out, DayTotal{Date: d, Engagements: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TotalEngagements sums engagements over the whole dataset.
func TotalEngagements(ds *Dataset) int64 {
	var n int64
	if ds == nil {
		return 0
	}
	for _, r := range ds.Records {
		n = addSat(n, r.Engagements)
	}
	return n
}

// addSat adds non-negative engagement counts, saturating at MaxInt64.
func addSat(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Direction is the first-versus-last comparison of an engagement series.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionIncreasing
	DirectionDecreasing
	DirectionStable
)

func (d Direction) String() string {
	switch d {
	case DirectionIncreasing:
		return "increasing"
	case DirectionDecreasing:
		return "decreasing"
	case DirectionStable:
		return "stable"
	}
	return "unknown"
}

// compareEnds compares only the first and last points; intermediate
// volatility is ignored. Fewer than two points yield DirectionUnknown.
func compareEnds(first, last int64, n int) Direction {
	switch {
	case n < 2:
		return DirectionUnknown
	case last > first:
		return DirectionIncreasing
	case last < first:
		return DirectionDecreasing
	}
	return DirectionStable
}

// DailyTrend compares the first and last day of DailyEngagements.
func DailyTrend(days []DayTotal) Direction {
	if len(days) == 0 {
		return DirectionUnknown
	}
	return compareEnds(days[0].Engagements, days[len(days)-1].Engagements, len(days))
}

// RecordTrend compares the engagements of the earliest and latest record,
// keeping input order among records of the same date.
func RecordTrend(ds *Dataset) Direction {
	if ds.Len() < 2 {
		return DirectionUnknown
	}
	recs := make([]Record, len(ds.Records))
	copy(recs, ds.Records)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return compareEnds(recs[0].Engagements, recs[len(recs)-1].Engagements, len(recs))
}

func peakAndLow(days []DayTotal) (peak, low DayTotal) {
	for i, d := range days {
		if i == 0 || d.Engagements > peak.Engagements {
			peak = d
		}
		if i == 0 || d.Engagements < low.Engagements {
			low = d
		}
	}
	return peak, low
}

func topN[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
