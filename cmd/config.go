package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/medintel/internal/ai"
	"github.com/KaramelBytes/medintel/internal/charts"
	cfgpkg "github.com/KaramelBytes/medintel/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set medintel configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "host: %s\n", c.Host)
		fmt.Fprintf(out, "port: %d\n", c.Port)
		fmt.Fprintf(out, "environment: %s\n", c.Environment)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "allowed_origins: %s\n", strings.Join(c.AllowedOrigins, ","))
		fmt.Fprintf(out, "shutdown_timeout_sec: %d\n", c.ShutdownTimeoutSec)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "default_theme: %s\n", c.DefaultTheme)
		fmt.Fprintf(out, "google_api_key: %s\n", mask(c.GoogleAPIKey))
		fmt.Fprintf(out, "gemini_model: %s\n", c.GeminiModel)
		fmt.Fprintf(out, "openrouter_base_url: %s\n", c.OpenRouterBaseURL)
		fmt.Fprintf(out, "openrouter_api_key: %s\n", mask(c.OpenRouterAPIKey))
		fmt.Fprintf(out, "default_model: %s\n", c.DefaultModel)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(out, "ai_max_concurrent: %d\n", c.AIMaxConcurrent)
		fmt.Fprintf(out, "session_store: %s\n", c.SessionStore)
		if c.SessionStore == "redis" {
			fmt.Fprintf(out, "redis_addr: %s\n", c.RedisAddr)
			fmt.Fprintf(out, "redis_db: %d\n", c.RedisDB)
		}
		fmt.Fprintf(out, "session_ttl_min: %d\n", c.SessionTTLMin)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setKey(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "host":
		c.Host = val
	case "port":
		c.Port, err = atoi(1)
	case "environment":
		c.Environment = strings.ToLower(val)
	case "log_level":
		c.LogLevel = val
	case "allowed_origins":
		c.AllowedOrigins = strings.Split(val, ",")
	case "shutdown_timeout_sec":
		c.ShutdownTimeoutSec, err = atoi(0)
	case "max_upload_mb":
		c.MaxUploadMB, err = atoi(1)
	case "default_theme":
		switch strings.ToLower(val) {
		case string(charts.ThemeLight), string(charts.ThemeDark):
			c.DefaultTheme = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid default_theme: %s (use light or dark)", val)
		}
	case "google_api_key":
		c.GoogleAPIKey = val
	case "gemini_model":
		c.GeminiModel = val
	case "openrouter_base_url":
		c.OpenRouterBaseURL = val
	case "openrouter_api_key":
		c.OpenRouterAPIKey = val
	case "default_model":
		id, rerr := ai.ResolveModel(val)
		if rerr != nil {
			return fmt.Errorf("invalid default_model %q: %w", val, rerr)
		}
		c.DefaultModel = id
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi(0)
	case "ai_max_concurrent":
		c.AIMaxConcurrent, err = atoi(1)
	case "session_store":
		switch val {
		case "memory", "redis":
			c.SessionStore = val
		default:
			return fmt.Errorf("invalid session_store: %s (use memory or redis)", val)
		}
	case "redis_addr":
		c.RedisAddr = val
	case "redis_password":
		c.RedisPassword = val
	case "redis_db":
		c.RedisDB, err = atoi(0)
	case "session_ttl_min":
		c.SessionTTLMin, err = atoi(1)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
