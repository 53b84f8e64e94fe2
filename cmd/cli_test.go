package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/medintel/internal/ai"
)

const mediaCSV = `Date,Platform,Sentiment,Location,Engagements,Media Type,Influencer Brand,Post Type
2024-01-01,Instagram,Positive,Jakarta,100,Image,BrandX,Feed Post
2024-01-02,TikTok,Negative,Bandung,300,Video,BrandY,Reel
2024-01-03,Instagram,Positive,Jakarta,500,Video,BrandX,Story
not a date,Instagram,Neutral,Surabaya,10,Image,BrandZ,Feed Post
`

// resetFlags restores every flag of c and its children to its default so
// invocations do not leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args under an isolated HOME and
// returns what the command wrote to its output stream.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("MEDINTEL_GOOGLE_API_KEY", "")
	t.Setenv("MEDINTEL_OPENROUTER_API_KEY", "")
	return home
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "media.csv")
	if err := os.WriteFile(p, []byte(mediaCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

type stubBackend struct {
	reply string
	cfg   ai.BackendConfig
	name  string
}

func (s *stubBackend) Name() string        { return s.name }
func (s *stubBackend) Model() string       { return s.cfg.Model }
func (s *stubBackend) Authenticate() error { return nil }
func (s *stubBackend) Complete(_ context.Context, prompt string) (string, error) {
	if !strings.Contains(prompt, "Total data entries: 3") {
		return "", errors.New("unexpected prompt")
	}
	return s.reply, nil
}

func stubBackends(t *testing.T, reply string) *stubBackend {
	t.Helper()
	sb := &stubBackend{reply: reply}
	old := newBackend
	newBackend = func(name string, c ai.BackendConfig) (ai.Backend, error) {
		sb.name, sb.cfg = name, c
		return sb, nil
	}
	t.Cleanup(func() { newBackend = old })
	return sb
}

func TestCLI_SampleStdoutAndFile(t *testing.T) {
	home := isolate(t)

	out, err := runCmd(t, "sample")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if !strings.HasPrefix(out, "Date,Platform,Sentiment,Location,Engagements,Media Type,Influencer Brand,Post Type\n") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "2023-01-01,Instagram,Positive,Jakarta,1500,Image,BrandX,Feed Post") {
		t.Fatalf("missing sample row: %q", out)
	}

	dest := filepath.Join(home, "nested", "sample.csv")
	if _, err := runCmd(t, "sample", "-o", dest); err != nil {
		t.Fatalf("sample -o: %v", err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(b) != out {
		t.Fatalf("file differs from stdout:\n%s\n---\n%s", b, out)
	}
}

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := isolate(t)
	p := writeCSV(t, home)

	out, err := runCmd(t, "analyze", p)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: media.csv",
		"Rows: 3 (dropped 1 with unparsable dates)",
		"Total engagements: 900",
		"[INSIGHTS]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONAndCharts(t *testing.T) {
	home := isolate(t)
	p := writeCSV(t, home)
	dir := filepath.Join(home, "charts")

	out, err := runCmd(t, "analyze", p, "--json", "--charts-dir", dir, "--format", "svg", "--theme", "dark")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got struct {
		TotalRows        int      `json:"total_rows"`
		Dropped          int      `json:"dropped"`
		TotalEngagements int64    `json:"total_engagements"`
		Insights         []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if got.TotalRows != 3 || got.Dropped != 1 || got.TotalEngagements != 900 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if len(got.Insights) == 0 {
		t.Fatalf("expected insights")
	}
	for _, id := range []string{"sentiment", "engagement-trend", "platform", "media-type", "locations"} {
		if _, err := os.Stat(filepath.Join(dir, id+".svg")); err != nil {
			t.Fatalf("chart %s not written: %v", id, err)
		}
	}
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	home := isolate(t)

	if _, err := runCmd(t, "analyze", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(home, "notes.txt")
	if err := os.WriteFile(bad, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "analyze", bad); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	nodate := filepath.Join(home, "nodate.csv")
	if err := os.WriteFile(nodate, []byte("Platform,Sentiment\nInstagram,Positive\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runCmd(t, "analyze", nodate)
	if err == nil || !strings.Contains(err.Error(), "Date") {
		t.Fatalf("expected schema error mentioning Date, got %v", err)
	}
}

func TestCLI_AskOpenRouterWithPDF(t *testing.T) {
	home := isolate(t)
	p := writeCSV(t, home)
	sb := stubBackends(t, "Summary paragraph.\n\n1. Post more video.")
	pdf := filepath.Join(home, "out", "report.pdf")

	out, err := runCmd(t, "ask", p, "--backend", "openrouter", "--model", "GPT-4o (OpenAI)", "--api-key", "sk-test", "--pdf", pdf)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, "1. Post more video.") {
		t.Fatalf("missing completion: %q", out)
	}
	if sb.name != ai.BackendOpenRouter || sb.cfg.APIKey != "sk-test" || sb.cfg.Model != "openai/gpt-4o" {
		t.Fatalf("unexpected backend config: %s %+v", sb.name, sb.cfg)
	}
	b, err := os.ReadFile(pdf)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
}

func TestCLI_AskRejectsUnknownModel(t *testing.T) {
	home := isolate(t)
	p := writeCSV(t, home)
	stubBackends(t, "unused")

	if _, err := runCmd(t, "ask", p, "--backend", "openrouter", "--model", "no/such-model", "--api-key", "k"); err == nil {
		t.Fatalf("expected unknown model error")
	}
}

func TestCLI_AskGeminiWithoutKey(t *testing.T) {
	home := isolate(t)
	p := writeCSV(t, home)

	_, err := runCmd(t, "ask", p)
	if err == nil {
		t.Fatalf("expected credential error")
	}
	if !strings.Contains(err.Error(), "config set") {
		t.Fatalf("expected configuration hint, got %v", err)
	}
}

func TestCLI_AskDryRunPrintsPrompt(t *testing.T) {
	home := isolate(t)
	p := writeCSV(t, home)

	out, err := runCmd(t, "ask", p, "--dry-run")
	if err != nil {
		t.Fatalf("ask --dry-run: %v", err)
	}
	if !strings.Contains(out, "Total data entries: 3") || !strings.Contains(out, ai.Instruction) {
		t.Fatalf("unexpected prompt: %q", out)
	}
}

func TestCLI_Models(t *testing.T) {
	isolate(t)

	out, err := runCmd(t, "models")
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(ai.Menu())+1 {
		t.Fatalf("expected header plus %d rows, got %d:\n%s", len(ai.Menu()), len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "*") || !strings.Contains(lines[1], ai.DefaultModel) {
		t.Fatalf("default model not marked: %q", lines[1])
	}

	out, err = runCmd(t, "models", "--json")
	if err != nil {
		t.Fatalf("models --json: %v", err)
	}
	var menu []ai.ModelInfo
	if err := json.Unmarshal([]byte(out), &menu); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(menu) != len(ai.Menu()) {
		t.Fatalf("menu size %d", len(menu))
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, "medintel.yaml")

	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "default_theme", "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "openrouter_api_key", "sk-or-secret-123"); err != nil {
		t.Fatalf("set key: %v", err)
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "default_model", "Llama 3 8B Instruct (Meta)"); err != nil {
		t.Fatalf("set model: %v", err)
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "port", "zero"); err == nil {
		t.Fatalf("expected invalid int error")
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "nope", "x"); err == nil {
		t.Fatalf("expected unknown key error")
	}

	out, err := runCmd(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{
		"default_theme: dark",
		"openrouter_api_key: sk-****123",
		"default_model: meta-llama/llama-3-8b-instruct",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("show missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "sk-or-secret-123") {
		t.Fatalf("secret printed in clear")
	}
}
