package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/charts"
	"github.com/KaramelBytes/medintel/internal/parser"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func parsePage() (*template.Template, error) {
	funcs := template.FuncMap{
		"markdown": renderMarkdown,
		"day":      func(t time.Time) string { return t.Format("2006-01-02") },
	}
	t, err := template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	return t, nil
}

type chartView struct {
	ID       string
	Title    string
	Insights []string
	URL      string
}

type pageData struct {
	Theme         string
	Dark          bool
	Status        DataStatus
	Header        []string
	SampleRow     []string
	Charts        []chartView
	Models        []ai.ModelInfo
	SelectedModel string
	HasKey        bool
	GeminiReady   bool
	AIText        string
	AIBackend     string
	ReportURL     string
}

func sampleCells() []string {
	r := parser.SampleRow()
	return []string{
		string(r.Date), string(r.Platform), string(r.Sentiment), string(r.Location),
		string(r.Engagements), string(r.MediaType), string(r.InfluencerBrand), string(r.PostType),
	}
}

func (s *Server) index(c echo.Context) error {
	sess := sessionFrom(c)
	theme := s.theme(c, sess)

	data := pageData{
		Theme:         string(theme),
		Dark:          theme.Dark(),
		Status:        statusOf(sess),
		Header:        parser.ManualHeader,
		SampleRow:     sampleCells(),
		Models:        ai.Menu(),
		SelectedModel: firstNonEmpty(sess.Model, s.cfg.DefaultModel),
		HasKey:        sess.OpenRouterKey != "",
		GeminiReady:   s.cfg.GoogleAPIKey != "",
		AIText:        sess.AI.Text,
		AIBackend:     sess.AI.Backend,
		ReportURL:     "/v1/report",
	}
	if sess.HasData() {
		version := strconv.FormatInt(sess.UpdatedAt.UnixNano(), 36)
		for _, sp := range charts.Build(sess.Dataset, theme) {
			data.Charts = append(data.Charts, chartView{
				ID:       sp.ID,
				Title:    sp.Title,
				Insights: sp.Insights,
				URL:      fmt.Sprintf("/v1/charts/%s?theme=%s&v=%s", sp.ID, theme, version),
			})
		}
	}

	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return HandleError(s.log, c, ErrInternal(fmt.Errorf("render page: %w", err)))
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
