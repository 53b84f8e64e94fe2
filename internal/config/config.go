package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Server
	Host               string   `mapstructure:"host" yaml:"host"`
	Port               int      `mapstructure:"port" yaml:"port"`
	Environment        string   `mapstructure:"environment" yaml:"environment"`
	LogLevel           string   `mapstructure:"log_level" yaml:"log_level"`
	AllowedOrigins     []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeoutSec int      `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
	MaxUploadMB        int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	DefaultTheme       string   `mapstructure:"default_theme" yaml:"default_theme"`

	// Gemini (server-held key)
	GoogleAPIKey string `mapstructure:"google_api_key" yaml:"google_api_key,omitempty"`
	GeminiModel  string `mapstructure:"gemini_model" yaml:"gemini_model"`

	// OpenRouter
	OpenRouterBaseURL string `mapstructure:"openrouter_base_url" yaml:"openrouter_base_url"`
	// Used by the CLI only; dashboard visitors bring their own key.
	OpenRouterAPIKey string `mapstructure:"openrouter_api_key" yaml:"openrouter_api_key,omitempty"`
	DefaultModel     string `mapstructure:"default_model" yaml:"default_model"`

	// HTTP
	HTTPTimeoutSec  int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	AIMaxConcurrent int `mapstructure:"ai_max_concurrent" yaml:"ai_max_concurrent"`

	// Sessions
	SessionStore  string `mapstructure:"session_store" yaml:"session_store"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password,omitempty"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
}

// Addr returns host:port for the dashboard listener.
func (c *Global) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func (c *Global) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// MaxUploadBytes is the upload body limit.
func (c *Global) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

// Validate rejects settings the server cannot start with.
func (c *Global) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.SessionStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("session_store=redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown session_store %q (want memory or redis)", c.SessionStore)
	}
	if c.AIMaxConcurrent < 1 {
		return fmt.Errorf("ai_max_concurrent must be at least 1")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be at least 1")
	}
	return nil
}

// Dir returns ~/.medintel.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".medintel"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.medintel/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("default_theme", "light")
	v.SetDefault("google_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("default_model", "google/gemini-pro-1.5-flash")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("ai_max_concurrent", 4)
	v.SetDefault("session_store", "memory")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("session_ttl_min", 60)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded first when present; it never overrides variables
// already set in the process environment.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MEDINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	// The Gemini key is conventionally exported without the prefix.
	if err := v.BindEnv("google_api_key", "MEDINTEL_GOOGLE_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	return &c, nil
}
