package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/KaramelBytes/medintel/internal/report"
	"github.com/KaramelBytes/medintel/internal/utils"
)

var (
	askBackend string
	askModel   string
	askAPIKey  string
	askPDF     string
	askSheet   string
	askDryRun  bool
)

// newBackend is swapped in tests.
var newBackend = ai.NewBackend

var askCmd = &cobra.Command{
	Use:   "ask <file>",
	Short: "Ask Gemini or an OpenRouter model to summarise a media export",
	Example: `  medintel ask data.csv
  medintel ask data.xlsx --backend openrouter --model openai/gpt-4o --pdf report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0], askSheet)
		if err != nil {
			return err
		}
		if askDryRun {
			fmt.Fprint(cmd.OutOrStdout(), ai.PromptFor(ds))
			return nil
		}

		bc := ai.BackendConfig{
			HTTPTimeout:  c.HTTPTimeout(),
			BaseURL:      c.OpenRouterBaseURL,
			GoogleAPIKey: c.GoogleAPIKey,
			GeminiModel:  c.GeminiModel,
		}
		if askBackend == ai.BackendOpenRouter {
			bc.APIKey = firstNonEmpty(askAPIKey, c.OpenRouterAPIKey)
			model, err := ai.ResolveModel(firstNonEmpty(askModel, c.DefaultModel))
			if err != nil {
				return fmt.Errorf("%w: %s", err, askModel)
			}
			bc.Model = model
		}
		backend, err := newBackend(askBackend, bc)
		if err != nil {
			return err
		}

		ctx, stop := withInterrupt(cmd.Context())
		defer stop()
		if c.HTTPTimeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.HTTPTimeout())
			defer cancel()
		}
		fmt.Fprintln(os.Stderr, "Generating insights...")
		res, err := ai.Analyze(ctx, backend, ds)
		if err != nil {
			var ce *ai.CredentialError
			if errors.As(err, &ce) {
				return fmt.Errorf("%w (set it in the environment or with 'medintel config set')", err)
			}
			return err
		}

		promptTokens, completionTokens := utils.CountTokens(res.Prompt), utils.CountTokens(res.Text)
		if cost, ok := ai.EstimateCostUSD(res.Model, promptTokens, completionTokens); ok {
			fmt.Fprintf(os.Stderr, "Estimated tokens: prompt=%d completion=%d, cost=$%.6f\n", promptTokens, completionTokens, cost)
		} else {
			fmt.Fprintf(os.Stderr, "Estimated tokens: prompt=%d completion=%d\n", promptTokens, completionTokens)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)

		if askPDF == "" {
			return nil
		}
		b, rr, err := report.Bytes(report.Input{AIText: res.Text, Bullets: analysis.ReportBullets(ds)})
		if err != nil {
			return err
		}
		if lerr := rr.Lossy(); lerr != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", lerr)
		}
		if err := utils.WriteFileAtomic(askPDF, b); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", askPDF)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askBackend, "backend", ai.BackendGemini, "AI backend: "+strings.Join(ai.Backends(), " or "))
	askCmd.Flags().StringVar(&askModel, "model", "", "OpenRouter model id or menu label (default from config)")
	askCmd.Flags().StringVar(&askAPIKey, "api-key", "", "OpenRouter API key (default from config)")
	askCmd.Flags().StringVar(&askPDF, "pdf", "", "also export the analysis as a PDF report to this path")
	askCmd.Flags().StringVar(&askSheet, "sheet", "", "worksheet name for .xlsx input (default first sheet)")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "print the prompt without calling the backend")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
