package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Name:   "sample.csv",
		Header: []string{"Date", "Platform", "Sentiment", "Location", "Engagements", "Media Type", "Influencer Brand", "Post Type"},
		Rows: [][]string{
			{"2023-01-01", "Instagram", "Positive", "Jakarta", "1500", "Image", "BrandX", "Feed Post"},
			{"2023-01-02", "TikTok", "Neutral", "Bandung", "800", "Video", "BrandY", "Reel"},
			{"not a date", "Twitter", "Negative", "Surabaya", "10", "Text", "BrandZ", "Tweet"},
			{"2023-01-03", "", "Positive", "", "", "Image", "", ""},
		},
	}
}

func TestCleanNormalizesColumns(t *testing.T) {
	tbl := &Table{
		Header: []string{" DATE ", "media type", "Influencer Brand", "post_type", "ENGAGEMENTS"},
		Rows:   [][]string{{"2023-05-01", "Video", "Acme", "Story", "42"}},
	}
	ds, err := Clean(tbl)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	r := ds.Records[0]
	require.Equal(t, "Video", r.MediaType)
	require.Equal(t, "Acme", r.InfluencerBrand)
	require.Equal(t, "Story", r.PostType)
	require.EqualValues(t, 42, r.Engagements)
	require.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), r.Date)
}

func TestCleanMissingDateColumn(t *testing.T) {
	cases := []*Table{
		nil,
		{Header: []string{"Platform", "Engagements"}, Rows: [][]string{{"Instagram", "10"}}},
		{Header: []string{"Datetime"}, Rows: [][]string{{"2023-01-01"}}},
	}
	for _, tbl := range cases {
		ds, err := Clean(tbl)
		var se *SchemaError
		require.True(t, errors.As(err, &se), "expected schema error, got %v", err)
		require.Equal(t, "date", se.Column)
		require.Contains(t, err.Error(), "no Date column")
		require.True(t, ds.Empty())
	}
}

func TestCleanDropsUnparsableDates(t *testing.T) {
	tbl := sampleTable()
	ds, err := Clean(tbl)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Dropped)
	require.Equal(t, len(tbl.Rows)-1, ds.Len())
	for _, r := range ds.Records {
		require.NotEqual(t, "Twitter", r.Platform)
	}
}

func TestCleanAllDatesInvalid(t *testing.T) {
	tbl := &Table{Header: []string{"Date"}, Rows: [][]string{{"x"}, {""}}}
	ds, err := Clean(tbl)
	require.ErrorIs(t, err, ErrNoValidRows)
	require.True(t, ds.Empty())
	require.Equal(t, 2, ds.Dropped)
}

func TestCleanEngagements(t *testing.T) {
	tbl := &Table{
		Header: []string{"Date", "Engagements"},
		Rows: [][]string{
			{"2023-01-01", ""},
			{"2023-01-01", "abc"},
			{"2023-01-01", "12.9"},
			{"2023-01-01", "1,500"},
			{"2023-01-01", "-5"},
			{"2023-01-01"},
		},
	}
	ds, err := Clean(tbl)
	require.NoError(t, err)
	got := make([]int64, 0, ds.Len())
	for _, r := range ds.Records {
		got = append(got, r.Engagements)
	}
	require.Equal(t, []int64{0, 0, 12, 1500, 0, 0}, got)
	require.Empty(t, ds.Warnings)
}

func TestCleanEngagementsSaturate(t *testing.T) {
	for _, v := range []string{"9223372036854775807", "9223372036854775808", "1e30"} {
		require.Equal(t, int64(math.MaxInt64), parseEngagements(v), v)
	}

	ds, err := Clean(&Table{
		Header: []string{"Date", "Platform", "Engagements"},
		Rows: [][]string{
			{"2023-01-01", "Instagram", "9223372036854775000"},
			{"2023-01-01", "Instagram", "9223372036854775000"},
			{"2023-01-02", "TikTok", "5"},
		},
	})
	require.NoError(t, err)
	for _, r := range ds.Records {
		require.GreaterOrEqual(t, r.Engagements, int64(0))
	}
	require.Equal(t, int64(math.MaxInt64), TotalEngagements(ds))
	sums := SumBy(ds, FieldPlatform)
	require.Equal(t, "Instagram", sums[0].Value)
	require.Equal(t, int64(math.MaxInt64), sums[0].Total)
	days := DailyEngagements(ds)
	require.Equal(t, int64(math.MaxInt64), days[0].Engagements)
	require.Equal(t, int64(5), days[1].Engagements)
}

func TestCleanMissingEngagementsColumnWarns(t *testing.T) {
	tbl := &Table{Header: []string{"Date", "Platform"}, Rows: [][]string{{"2023-01-01", "Instagram"}}}
	ds, err := Clean(tbl)
	require.NoError(t, err)
	require.Equal(t, []string{WarnNoEngagements}, ds.Warnings)
	require.Zero(t, ds.Records[0].Engagements)
}

func TestCleanFillsUnknown(t *testing.T) {
	ds, err := Clean(sampleTable())
	require.NoError(t, err)
	last := ds.Records[len(ds.Records)-1]
	require.Equal(t, Unknown, last.Platform)
	require.Equal(t, Unknown, last.Location)
	require.Equal(t, Unknown, last.InfluencerBrand)
	require.Equal(t, Unknown, last.PostType)
	require.Equal(t, "Positive", last.Sentiment)

	// absent columns are fully populated
	ds, err = Clean(&Table{Header: []string{"Date"}, Rows: [][]string{{"2023-01-01"}, {"2023-01-02"}}})
	require.NoError(t, err)
	for _, r := range ds.Records {
		for _, f := range CategoricalFields {
			require.Equal(t, Unknown, r.Get(f), "field %s", f)
		}
	}
}

func TestParseTimeMaybe(t *testing.T) {
	for _, s := range []string{"2023-01-05", "2023/01/05", "01/05/2023", "1/5/2023", "2023-01-05T10:00:00Z", "2023-01-05 10:00"} {
		d, ok := parseTimeMaybe(s)
		require.True(t, ok, s)
		require.Equal(t, 2023, d.Year(), s)
	}
	_, ok := parseTimeMaybe("yesterday")
	require.False(t, ok)
}

func TestParseTimeMaybeDashedIsMonthFirst(t *testing.T) {
	want := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"01-05-2023", "01-05-23", "01/05/2023"} {
		d, ok := parseTimeMaybe(s)
		require.True(t, ok, s)
		require.Equal(t, want, d, s)
	}
}
