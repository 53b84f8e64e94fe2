package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/medintel/internal/analysis"
)

// Instruction closes every analysis prompt.
const Instruction = "Provide a brief summary of the data from the five charts above (at most 2 paragraphs) " +
	"and then give 3 actionable campaign recommendations to optimize future strategy."

const noInsights = "No specific chart insights."

// BuildPrompt renders the statistics summary and chart insights into the
// analysis prompt. It performs no I/O.
func BuildPrompt(s *analysis.Summary, insights []string) string {
	if s == nil {
		s = analysis.Stats(nil)
	}
	var b strings.Builder
	b.WriteString("Based on the following media intelligence data summary:\n\n")
	if s.TotalRows == 0 {
		b.WriteString("No data available.\n")
	} else {
		fmt.Fprintf(&b, "Total data entries: %d\n", s.TotalRows)
		fmt.Fprintf(&b, "Sentiment distribution: %s\n", analysis.FormatCounts(s.SentimentCounts))
		fmt.Fprintf(&b, "Platform engagements: %s\n", analysis.FormatTotals(s.PlatformEngagements))
		fmt.Fprintf(&b, "Media type distribution: %s\n", analysis.FormatCounts(s.MediaTypeCounts))
		fmt.Fprintf(&b, "Top locations: %s\n", analysis.FormatCounts(s.TopLocations))
		fmt.Fprintf(&b, "Engagement trend summary: %s\n", s.TrendSummary)
	}

	b.WriteString("\nKey insights from the charts:\n- ")
	if len(insights) == 0 {
		b.WriteString(noInsights)
	} else {
		b.WriteString(strings.Join(insights, "; "))
	}
	b.WriteString("\n\n")
	b.WriteString(Instruction)
	b.WriteString("\n")
	return b.String()
}

// PromptFor builds the prompt for a cleaned dataset.
func PromptFor(ds *analysis.Dataset) string {
	return BuildPrompt(analysis.Stats(ds), analysis.PromptInsights(ds))
}

// Result is a completed analysis.
type Result struct {
	Backend string `json:"backend"`
	Model   string `json:"model,omitempty"`
	Prompt  string `json:"-"`
	Text    string `json:"text"`
}

// Analyze prompts the backend about ds. Credentials are checked before the
// prompt is built so that a misconfigured backend fails without work.
func Analyze(ctx context.Context, b Backend, ds *analysis.Dataset) (*Result, error) {
	if err := b.Authenticate(); err != nil {
		return nil, err
	}
	prompt := PromptFor(ds)
	text, err := b.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &Result{Backend: b.Name(), Model: ModelOf(b), Prompt: prompt, Text: text}, nil
}
