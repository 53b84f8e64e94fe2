package charts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/stretchr/testify/require"
)

func fixture() *analysis.Dataset {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	platforms := []string{"Instagram", "TikTok", "Twitter"}
	sentiments := []string{"Positive", "Positive", "Neutral", "Negative"}
	media := []string{"Image", "Video"}
	var recs []analysis.Record
	for i := 0; i < 14; i++ {
		recs = append(recs, analysis.Record{
			Date:            base.AddDate(0, 0, i%5),
			Platform:        platforms[i%len(platforms)],
			Sentiment:       sentiments[i%len(sentiments)],
			Location:        fmt.Sprintf("City%d", i%7),
			Engagements:     int64(100 + i*10),
			MediaType:       media[i%len(media)],
			InfluencerBrand: "BrandX",
			PostType:        "Feed Post",
		})
	}
	return &analysis.Dataset{Records: recs}
}

func TestBuildOrderAndKinds(t *testing.T) {
	specs := Build(fixture(), ThemeLight)
	require.Len(t, specs, 5)
	want := []struct {
		id   string
		kind Kind
	}{
		{IDSentiment, KindPie}, {IDTrend, KindLine}, {IDPlatform, KindBar}, {IDMediaType, KindPie}, {IDLocations, KindBar},
	}
	for i, w := range want {
		require.Equal(t, w.id, specs[i].ID)
		require.Equal(t, w.kind, specs[i].Kind)
		require.NotEmpty(t, specs[i].Insights, w.id)
		require.Equal(t, 400, specs[i].Layout.Height)
		require.EqualValues(t, 24, specs[i].Layout.TitleSize)
	}
}

func TestBuildAggregates(t *testing.T) {
	specs := Build(fixture(), ThemeLight)

	platform, ok := Find(specs, IDPlatform)
	require.True(t, ok)
	for i := 1; i < len(platform.Values); i++ {
		require.GreaterOrEqual(t, platform.Values[i-1], platform.Values[i])
	}

	loc, _ := Find(specs, IDLocations)
	require.Len(t, loc.Labels, analysis.TopLocations)

	trend, _ := Find(specs, IDTrend)
	require.Len(t, trend.Dates, 5)
	for i := 1; i < len(trend.Dates); i++ {
		require.True(t, trend.Dates[i-1].Before(trend.Dates[i]))
	}
}

func TestThemeColors(t *testing.T) {
	dark := Build(fixture(), ParseTheme("DARK"))
	light := Build(fixture(), ParseTheme(""))

	trendDark, _ := Find(dark, IDTrend)
	trendLight, _ := Find(light, IDTrend)
	require.Equal(t, []string{"#66d9ef"}, trendDark.Colors)
	require.Equal(t, []string{"#1f77b4"}, trendLight.Colors)
	require.Equal(t, "white", trendDark.Layout.TextColor)
	require.Equal(t, "#4a5568", trendDark.Layout.GridColor)
	require.Equal(t, "#2C3E50", trendLight.Layout.TextColor)
	require.Equal(t, "#e2e8f0", trendLight.Layout.GridColor)

	bar, _ := Find(dark, IDPlatform)
	require.Equal(t, []string{"#a78bfa"}, bar.Colors)
	loc, _ := Find(light, IDLocations)
	require.Equal(t, []string{"#2ca02c"}, loc.Colors)
}

func TestRenderSVG(t *testing.T) {
	for _, s := range Build(fixture(), ThemeDark) {
		b, err := RenderBytes(s, FormatSVG)
		require.NoError(t, err, s.ID)
		require.True(t, strings.Contains(string(b), "<svg"), s.ID)
	}
}

func TestRenderEmpty(t *testing.T) {
	specs := Build(&analysis.Dataset{}, ThemeLight)
	require.Len(t, specs, 5)
	_, err := RenderBytes(specs[0], FormatSVG)
	require.True(t, errors.Is(err, ErrNoData))
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := RenderAll(context.Background(), Build(fixture(), ThemeLight), FormatPNG, dir)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		require.Greater(t, st.Size(), int64(0))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	require.Equal(t, "image/png", f.ContentType())
	_, err = ParseFormat("gif")
	require.Error(t, err)
}
