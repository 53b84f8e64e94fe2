package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/medintel/internal/utils"
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ErrNoData is returned when a spec has nothing to draw.
var ErrNoData = errors.New("chart has no data")

// ParseFormat accepts "svg" or "png"; empty defaults to svg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported chart format: %s (use svg or png)", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Render draws a spec as an image.
func Render(s Spec, f Format, w io.Writer) error {
	if len(s.Values) == 0 {
		return fmt.Errorf("%s: %w", s.ID, ErrNoData)
	}
	switch s.Kind {
	case KindPie:
		return renderPie(s, f, w)
	case KindLine:
		return renderLine(s, f, w)
	case KindBar:
		return renderBar(s, f, w)
	}
	return fmt.Errorf("unknown chart kind %q", s.Kind)
}

// RenderBytes renders a spec into memory.
func RenderBytes(s Spec, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(s, f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAll renders every spec with data into dir as <id>.<format> and
// returns the written paths in spec order.
func RenderAll(ctx context.Context, specs []Spec, f Format, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir charts dir: %w", err)
	}
	paths := make([]string, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range specs {
		if len(s.Values) == 0 {
			continue
		}
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := RenderBytes(s, f)
			if err != nil {
				return err
			}
			p := filepath.Join(dir, s.ID+"."+string(f))
			if err := utils.WriteFileAtomic(p, b); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func titleStyle(l Layout) chart.Style {
	return chart.Style{FontSize: l.TitleSize, FontColor: ParseColor(l.TextColor)}
}

func background(l Layout) chart.Style {
	m := float64(l.Margin)
	return chart.Style{
		FillColor: ParseColor(l.Background),
		Padding:   chart.Box{Top: int(m), Left: int(m), Right: int(m), Bottom: int(m)},
	}
}

func axisStyle(l Layout) chart.Style {
	return chart.Style{FontColor: ParseColor(l.TextColor), StrokeColor: ParseColor(l.TextColor)}
}

func gridStyle(l Layout) chart.Style {
	return chart.Style{StrokeColor: ParseColor(l.GridColor), StrokeWidth: 1}
}

func colorAt(colors []string, i int) string {
	if len(colors) == 0 {
		return "#1f77b4"
	}
	return colors[i%len(colors)]
}

func yRange(values []float64) *chart.ContinuousRange {
	hi := 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
	}
	if hi <= 0 {
		hi = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: hi * 1.1}
}

func renderPie(s Spec, f Format, w io.Writer) error {
	values := make([]chart.Value, len(s.Values))
	for i, v := range s.Values {
		values[i] = chart.Value{
			Label: s.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   ParseColor(colorAt(s.Colors, i)),
				StrokeColor: ParseColor(s.Layout.TextColor),
				FontColor:   ParseColor(s.Layout.TextColor),
			},
		}
	}
	pie := chart.PieChart{
		Title:      s.Title,
		TitleStyle: titleStyle(s.Layout),
		Width:      s.Layout.Width,
		Height:     s.Layout.Height,
		Background: background(s.Layout),
		Canvas:     chart.Style{FillColor: ParseColor(s.Layout.Background)},
		Values:     values,
	}
	return pie.Render(f.provider(), w)
}

func renderBar(s Spec, f Format, w io.Writer) error {
	bars := make([]chart.Value, len(s.Values))
	for i, v := range s.Values {
		bars[i] = chart.Value{
			Label: s.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: ParseColor(colorAt(s.Colors, 0)), StrokeColor: ParseColor(colorAt(s.Colors, 0))},
		}
	}
	bc := chart.BarChart{
		Title:      s.Title,
		TitleStyle: titleStyle(s.Layout),
		Width:      s.Layout.Width,
		Height:     s.Layout.Height,
		BarWidth:   barWidth(s.Layout.Width, len(bars)),
		Background: background(s.Layout),
		Canvas:     chart.Style{FillColor: ParseColor(s.Layout.Background)},
		XAxis:      axisStyle(s.Layout),
		YAxis: chart.YAxis{
			Name:           s.YLabel,
			Style:          axisStyle(s.Layout),
			Range:          yRange(s.Values),
			GridMajorStyle: gridStyle(s.Layout),
		},
		Bars: bars,
	}
	return bc.Render(f.provider(), w)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	bw := (width - 200) / (n * 2)
	if bw > 80 {
		return 80
	}
	if bw < 10 {
		return 10
	}
	return bw
}

func renderLine(s Spec, f Format, w io.Writer) error {
	xs := append([]time.Time(nil), s.Dates...)
	ys := append([]float64(nil), s.Values...)
	// a single day still needs a non-zero x range
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	col := ParseColor(colorAt(s.Colors, 0))
	series := chart.TimeSeries{
		Name:    s.YLabel,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
			DotColor:    col,
			DotWidth:    4,
		},
	}
	ch := chart.Chart{
		Title:      s.Title,
		TitleStyle: titleStyle(s.Layout),
		Width:      s.Layout.Width,
		Height:     s.Layout.Height,
		Background: background(s.Layout),
		Canvas:     chart.Style{FillColor: ParseColor(s.Layout.Background)},
		XAxis: chart.XAxis{
			Name:           s.XLabel,
			Style:          axisStyle(s.Layout),
			Ticks:          dateTicks(xs),
			GridMajorStyle: gridStyle(s.Layout),
		},
		YAxis: chart.YAxis{
			Name:           s.YLabel,
			Style:          axisStyle(s.Layout),
			Range:          yRange(ys),
			GridMajorStyle: gridStyle(s.Layout),
		},
		Series: []chart.Series{series},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(f.provider(), w)
}

// dateTicks labels at most eight evenly spaced days.
func dateTicks(ts []time.Time) []chart.Tick {
	const maxTicks = 8
	step := 1
	if len(ts) > maxTicks {
		step = int(math.Ceil(float64(len(ts)) / maxTicks))
	}
	var ticks []chart.Tick
	for i := 0; i < len(ts); i += step {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(ts[i]), Label: ts[i].Format("2006-01-02")})
	}
	return ticks
}
