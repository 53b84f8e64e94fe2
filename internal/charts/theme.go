package charts

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Theme selects chart colors for a light or dark page background.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a theme flag to a Theme; anything but "dark" is light.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) Dark() bool { return t == ThemeDark }

// Palette is the categorical color sequence for bars and lines.
func (t Theme) Palette() []string {
	if t.Dark() {
		return []string{"#66d9ef", "#a78bfa", "#ff66c4", "#66ff99", "#ffcc66"}
	}
	return []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"}
}

// TextColor is used for titles, ticks and legends.
func (t Theme) TextColor() string {
	if t.Dark() {
		return "white"
	}
	return "#2C3E50"
}

// GridColor is used for axis grid lines.
func (t Theme) GridColor() string {
	if t.Dark() {
		return "#4a5568"
	}
	return "#e2e8f0"
}

// sequential ramps for the two pie charts, darkest first
var (
	blues   = []string{"#08306b", "#08519c", "#2171b5", "#4292c6", "#6baed6", "#9ecae1", "#c6dbef", "#deebf7"}
	bluyl   = []string{"#045275", "#00718b", "#089099", "#46aea0", "#7ccba2", "#b7e6a5", "#f7feae"}
	greens  = []string{"#00441b", "#006d2c", "#238b45", "#41ab5d", "#74c476", "#a1d99b", "#c7e9c0", "#e5f5e0"}
	aggrnyl = []string{"#245668", "#0f7279", "#0d8f81", "#39ab7e", "#6ec574", "#a9dc67", "#edef5d"}
)

func (t Theme) sentimentRamp() []string {
	if t.Dark() {
		return bluyl
	}
	return blues
}

func (t Theme) mediaRamp() []string {
	if t.Dark() {
		return aggrnyl
	}
	return greens
}

// Layout mirrors the shared page layout of every chart.
type Layout struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	TitleSize  float64 `json:"title_size"`
	Margin     int     `json:"margin"`
	TextColor  string  `json:"text_color"`
	GridColor  string  `json:"grid_color"`
	Background string  `json:"background"`
}

// LayoutFor returns the layout used for every chart under a theme.
func LayoutFor(t Theme) Layout {
	return Layout{
		Width:      800,
		Height:     400,
		TitleSize:  24,
		Margin:     50,
		TextColor:  t.TextColor(),
		GridColor:  t.GridColor(),
		Background: "transparent",
	}
}

// ParseColor converts "#rrggbb", "white" or "transparent" into a drawing color.
func ParseColor(s string) drawing.Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transparent":
		return drawing.ColorTransparent
	case "white":
		return drawing.ColorWhite
	case "black":
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}
