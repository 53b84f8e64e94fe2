package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/KaramelBytes/medintel/internal/charts"
	"github.com/KaramelBytes/medintel/internal/parser"
	"github.com/KaramelBytes/medintel/internal/report"
	"github.com/KaramelBytes/medintel/internal/session"
	"github.com/KaramelBytes/medintel/internal/utils"
)

// headRows is the number of cleaned rows previewed after ingestion.
const headRows = 5

// completionReserve is the token budget kept free for the model's answer
// when checking the prompt against a model's context window.
const completionReserve = 1024

type manualRequest struct {
	Rows []parser.ManualRow `json:"rows" validate:"required,min=1,max=10000"`
}

type aiRequest struct {
	APIKey string `json:"api_key" form:"api_key" validate:"omitempty,max=512"`
	Model  string `json:"model" form:"model" validate:"omitempty,max=200"`
}

// DataStatus describes the session's dataset and analysis state.
type DataStatus struct {
	Message     string            `json:"message,omitempty"`
	HasData     bool              `json:"has_data"`
	Source      string            `json:"source,omitempty"`
	Rows        int               `json:"rows"`
	Dropped     int               `json:"dropped"`
	Warnings    []string          `json:"warnings,omitempty"`
	Head        []analysis.Record `json:"head"`
	HasAnalysis bool              `json:"has_analysis"`
	CanExport   bool              `json:"can_export"`
	LastError   string            `json:"last_error,omitempty"`
}

// AIResult is the body returned by a successful analysis.
type AIResult struct {
	Backend string `json:"backend"`
	Model   string `json:"model,omitempty"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

func statusOf(sess *session.Session) DataStatus {
	st := DataStatus{
		HasData:     sess.HasData(),
		HasAnalysis: strings.TrimSpace(sess.AI.Text) != "",
		CanExport:   sess.CanExport(),
		LastError:   sess.LastError,
		Head:        []analysis.Record{},
	}
	if ds := sess.Dataset; ds != nil {
		st.Source = ds.Source
		st.Rows = ds.Len()
		st.Dropped = ds.Dropped
		st.Warnings = ds.Warnings
		st.Head = append(st.Head, ds.Head(headRows)...)
	}
	return st
}

func (s *Server) sample(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"header": parser.ManualHeader,
		"rows":   []parser.ManualRow{parser.SampleRow()},
	})
}

func (s *Server) manualData(c echo.Context) error {
	var req manualRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(s.log, c, ErrValidation("Malformed JSON body."))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(s.log, c, err)
	}
	t, err := parser.FromManualRows(req.Rows)
	return s.ingest(c, t, err)
}

func (s *Server) uploadData(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return HandleError(s.log, c, ErrValidation("Choose a CSV or Excel file to upload."))
	}
	f, err := fh.Open()
	if err != nil {
		return HandleError(s.log, c, ErrInternal(err))
	}
	defer f.Close()
	t, err := parser.Parse(fh.Filename, f)
	return s.ingest(c, t, err)
}

// ingest cleans a parsed table into the session. Any failure clears the
// session's dataset and analysis.
func (s *Server) ingest(c echo.Context, t *analysis.Table, parseErr error) error {
	fail := func(err error) error {
		if _, serr := s.update(c, func(sess *session.Session) error {
			sess.FailIngest(err)
			return nil
		}); serr != nil {
			return HandleError(s.log, c, serr)
		}
		return HandleError(s.log, c, err)
	}
	if parseErr != nil {
		return fail(parseErr)
	}
	ds, err := analysis.Clean(t)
	if err != nil {
		return fail(err)
	}
	sess, err := s.update(c, func(sess *session.Session) error {
		sess.ReplaceDataset(ds)
		return nil
	})
	if err != nil {
		return HandleError(s.log, c, err)
	}
	s.log.Info("data.ingested",
		zap.String("session_id", sess.ID),
		zap.String("source", ds.Source),
		zap.Int("rows", ds.Len()),
		zap.Int("dropped", ds.Dropped),
	)
	st := statusOf(sess)
	st.Message = "Data cleaned successfully!"
	return c.JSON(http.StatusOK, st)
}

func (s *Server) dataStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, statusOf(sessionFrom(c)))
}

// theme resolves the chart theme from ?theme=, remembering an explicit
// choice in the session.
func (s *Server) theme(c echo.Context, sess *session.Session) charts.Theme {
	if q := c.QueryParam("theme"); q != "" {
		th := charts.ParseTheme(q)
		if sess.Theme != string(th) {
			sess.Theme = string(th)
			if _, err := s.update(c, func(fresh *session.Session) error {
				fresh.Theme = string(th)
				return nil
			}); err != nil {
				s.log.Warn("session.theme.save_failed", zap.Error(err))
			}
		}
		return th
	}
	if sess.Theme != "" {
		return charts.ParseTheme(sess.Theme)
	}
	return charts.ParseTheme(s.cfg.DefaultTheme)
}

func (s *Server) chartSpecs(c echo.Context) error {
	sess := sessionFrom(c)
	if !sess.HasData() {
		return HandleError(s.log, c, ErrNoData())
	}
	return c.JSON(http.StatusOK, charts.Build(sess.Dataset, s.theme(c, sess)))
}

func (s *Server) chartImage(c echo.Context) error {
	sess := sessionFrom(c)
	if !sess.HasData() {
		return HandleError(s.log, c, ErrNoData())
	}
	f, err := charts.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return HandleError(s.log, c, ErrValidation(err.Error()))
	}
	spec, ok := charts.Find(charts.Build(sess.Dataset, s.theme(c, sess)), c.Param("id"))
	if !ok {
		return HandleError(s.log, c, ErrNotFound("chart "+c.Param("id")))
	}
	b, err := charts.RenderBytes(spec, f)
	if err != nil {
		return HandleError(s.log, c, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, f.ContentType(), b)
}

func (s *Server) models(c echo.Context) error {
	sess := sessionFrom(c)
	selected := sess.Model
	if selected == "" {
		selected = s.cfg.DefaultModel
	}
	return c.JSON(http.StatusOK, map[string]any{
		"default":  s.cfg.DefaultModel,
		"selected": selected,
		"models":   ai.Menu(),
	})
}

// backendConfig builds the backend settings for one request. OpenRouter
// only ever uses the visitor's own key; the server key in config is for the
// CLI.
func (s *Server) backendConfig(name string, sess *session.Session, req aiRequest) ai.BackendConfig {
	cfg := ai.BackendConfig{
		HTTPTimeout:  s.cfg.HTTPTimeout(),
		BaseURL:      s.cfg.OpenRouterBaseURL,
		GoogleAPIKey: s.cfg.GoogleAPIKey,
		GeminiModel:  s.cfg.GeminiModel,
	}
	if name == ai.BackendOpenRouter {
		cfg.APIKey = firstNonEmpty(req.APIKey, sess.OpenRouterKey)
		cfg.Model = firstNonEmpty(req.Model, sess.Model, s.cfg.DefaultModel)
	}
	return cfg
}

func (s *Server) analyze(c echo.Context) error {
	sess := sessionFrom(c)
	name := c.Param("backend")

	var req aiRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(s.log, c, ErrValidation("Malformed request body."))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(s.log, c, err)
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if name == ai.BackendOpenRouter && (req.APIKey != "" || req.Model != "") {
		// the key and model persist for the rest of the session
		var err error
		sess, err = s.update(c, func(fresh *session.Session) error {
			if req.APIKey != "" {
				fresh.OpenRouterKey = req.APIKey
			}
			if req.Model != "" {
				fresh.Model = req.Model
			}
			return nil
		})
		if err != nil {
			return HandleError(s.log, c, err)
		}
	}
	if !sess.HasData() {
		return HandleError(s.log, c, ErrNoData())
	}
	// the result only applies to the dataset it was computed from
	version, ds := sess.DataVersion, sess.Dataset

	backend, err := s.newBackend(name, s.backendConfig(name, sess, req))
	if err != nil {
		return s.failAI(c, version, name, err)
	}
	if !s.aiSem.TryAcquire(1) {
		return HandleError(s.log, c, ErrAIBusy())
	}
	defer s.aiSem.Release(1)

	model := ai.ModelOf(backend)
	if mi, ok := ai.LookupModel(model); ok {
		if prompt := ai.PromptFor(ds); !utils.FitsContext(prompt, completionReserve, mi.ContextTokens) {
			s.log.Warn("ai.prompt.context_overflow",
				zap.String("model", model),
				zap.Int("prompt_tokens_est", utils.CountTokens(prompt)),
				zap.Int("context_tokens", mi.ContextTokens),
			)
		}
	}

	ctx := c.Request().Context()
	if d := s.cfg.HTTPTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	start := time.Now()
	res, err := ai.Analyze(ctx, backend, ds)
	if err != nil {
		return s.failAI(c, version, name, err)
	}
	sess, err = s.update(c, func(fresh *session.Session) error {
		return fresh.SetAI(version, session.AIResponse{Text: res.Text, Backend: res.Backend, Model: res.Model})
	})
	if err != nil {
		if errors.Is(err, session.ErrDataChanged) {
			s.log.Info("ai.analysis.discarded",
				zap.String("session_id", sessionFrom(c).ID),
				zap.String("backend", res.Backend),
			)
		}
		return HandleError(s.log, c, err)
	}

	fields := []zap.Field{
		zap.String("session_id", sess.ID),
		zap.String("backend", res.Backend),
		zap.String("model", res.Model),
		zap.Int("prompt_tokens_est", utils.CountTokens(res.Prompt)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if cost, ok := ai.EstimateCostUSD(res.Model, utils.CountTokens(res.Prompt), utils.CountTokens(res.Text)); ok {
		fields = append(fields, zap.String("est_cost_usd", fmt.Sprintf("%.6f", cost)))
	}
	s.log.Info("ai.analysis.completed", fields...)

	return c.JSON(http.StatusOK, AIResult{
		Backend: res.Backend,
		Model:   res.Model,
		Text:    res.Text,
		HTML:    string(renderMarkdown(res.Text)),
	})
}

// failAI clears the session's analysis before reporting err, unless the
// dataset was replaced in the meantime.
func (s *Server) failAI(c echo.Context, version, backend string, err error) error {
	if _, serr := s.update(c, func(fresh *session.Session) error {
		return fresh.FailAI(version, err)
	}); serr != nil && !errors.Is(serr, session.ErrDataChanged) {
		s.log.Error("session.save_failed", zap.String("session_id", sessionFrom(c).ID), zap.Error(serr))
	}
	s.log.Warn("ai.analysis.failed",
		zap.String("session_id", sessionFrom(c).ID),
		zap.String("backend", backend),
		zap.Error(err),
	)
	return HandleError(s.log, c, err)
}

func (s *Server) report(c echo.Context) error {
	sess := sessionFrom(c)
	if !sess.CanExport() {
		return HandleError(s.log, c, ErrNoAnalysis())
	}
	b, res, err := report.Bytes(report.Input{
		AIText:  sess.AI.Text,
		Bullets: analysis.ReportBullets(sess.Dataset),
	})
	if err != nil {
		return HandleError(s.log, c, err)
	}
	if lossy := res.Lossy(); lossy != nil {
		s.log.Info("report.encoding", zap.String("session_id", sess.ID), zap.Error(lossy))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename))
	return c.Blob(http.StatusOK, "application/pdf", b)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
