package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/medintel/internal/config"
	"github.com/KaramelBytes/medintel/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// HTTP flags (override config if set)
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "medintel",
	Short: "Media Intelligence Dashboard: clean media data, chart it and ask an AI for recommendations",
	Long: `medintel ingests media-monitoring rows (CSV, Excel or manual entry), cleans them,
derives per-dimension insights and charts, asks Gemini or an OpenRouter model for a
summary with campaign recommendations, and exports the result as a PDF report.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.medintel/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds for AI calls (overrides config)")
}

func loadConfig() {
	if _, err := requireConfig(); err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
}

// requireConfig returns the loaded config, loading it on first use and
// applying global flag overrides.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rootCmd.PersistentFlags().Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		c.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if debug {
		c.LogLevel = "debug"
	}
	cfg = c
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) (*zap.Logger, error) {
	return logging.New(c.LogLevel, c.Environment)
}
