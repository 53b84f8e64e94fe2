package ai

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Backend is one LLM provider able to turn a prompt into completion text.
type Backend interface {
	Name() string
	// Authenticate checks that credentials are present without calling out.
	Authenticate() error
	Complete(ctx context.Context, prompt string) (string, error)
}

// Backend identifiers.
const (
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
)

// BackendConfig carries the knobs used by backend factories.
type BackendConfig struct {
	HTTPTimeout time.Duration
	// OpenRouter: user supplied key and model id from the menu.
	APIKey  string
	Model   string
	BaseURL string
	// Gemini: server-held key.
	GoogleAPIKey string
	GeminiModel  string
}

// BackendFactory builds a Backend from config.
type BackendFactory func(BackendConfig) (Backend, error)

var registry = map[string]BackendFactory{}

// RegisterBackend registers a backend name with its factory.
func RegisterBackend(name string, f BackendFactory) { registry[name] = f }

// NewBackend creates the named backend.
func NewBackend(name string, cfg BackendConfig) (Backend, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return f(cfg)
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// modelNamer is implemented by backends that know their model id.
type modelNamer interface {
	Model() string
}

// ModelOf returns the model id used by b, if known.
func ModelOf(b Backend) string {
	if m, ok := b.(modelNamer); ok {
		return m.Model()
	}
	return ""
}

func init() {
	RegisterBackend(BackendOpenRouter, func(c BackendConfig) (Backend, error) {
		return NewOpenRouter(c.APIKey, c.Model, c.BaseURL, c.HTTPTimeout)
	})
	RegisterBackend(BackendGemini, func(c BackendConfig) (Backend, error) {
		return NewGemini(c.GoogleAPIKey, c.GeminiModel), nil
	})
}
