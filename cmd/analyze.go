package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/KaramelBytes/medintel/internal/charts"
	"github.com/KaramelBytes/medintel/internal/parser"
	"github.com/KaramelBytes/medintel/internal/utils"
)

var (
	anaJSON      bool
	anaChartsDir string
	anaTheme     string
	anaFormat    string
	anaSheet     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Clean a CSV/XLSX media export and print statistics and chart insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0], anaSheet)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		sum := analysis.Stats(ds)
		if anaJSON {
			b, err := utils.PrettyJSON(struct {
				*analysis.Summary
				Insights []string `json:"insights"`
			}{sum, analysis.PromptInsights(ds)})
			if err != nil {
				return err
			}
			if _, err := out.Write(b); err != nil {
				return err
			}
		} else {
			fmt.Fprint(out, sum.Markdown(analysis.Summarize(ds)))
		}

		if anaChartsDir == "" {
			return nil
		}
		format, err := charts.ParseFormat(anaFormat)
		if err != nil {
			return err
		}
		theme := charts.ParseTheme(anaTheme)
		if !cmd.Flags().Changed("theme") && cfg != nil {
			theme = charts.ParseTheme(cfg.DefaultTheme)
		}
		ctx, stop := withInterrupt(cmd.Context())
		defer stop()
		paths, err := charts.RenderAll(ctx, charts.Build(ds, theme), format, anaChartsDir)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		for _, p := range paths {
			if p != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the summary as JSON")
	analyzeCmd.Flags().StringVar(&anaChartsDir, "charts-dir", "", "render the five charts into this directory")
	analyzeCmd.Flags().StringVar(&anaTheme, "theme", "light", "chart theme: light or dark")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "svg", "chart image format: svg or png")
	analyzeCmd.Flags().StringVar(&anaSheet, "sheet", "", "worksheet name for .xlsx input (default first sheet)")
}

// loadDataset parses and cleans path. Cleaning warnings go to stderr.
func loadDataset(path, sheet string) (*analysis.Dataset, error) {
	var (
		t   *analysis.Table
		err error
	)
	if sheet != "" && strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, oerr := os.Open(path)
		if oerr != nil {
			return nil, fmt.Errorf("open file: %w", oerr)
		}
		defer f.Close()
		t, err = parser.ParseXLSXSheet(filepath.Base(path), f, sheet)
	} else {
		t, err = parser.ParseFile(path)
	}
	if err != nil {
		return nil, err
	}
	ds, err := analysis.Clean(t)
	if err != nil {
		return nil, err
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
	if ds.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "⚠ Warning: dropped %d row(s) with unparsable dates\n", ds.Dropped)
	}
	return ds, nil
}

func withInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
