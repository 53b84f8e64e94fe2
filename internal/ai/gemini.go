package ai

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// DefaultGeminiModel is used when no Gemini model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// ModelFactory opens a langchaingo model for a key and model name.
type ModelFactory func(ctx context.Context, apiKey, model string) (llms.Model, error)

// Gemini is the managed-credential backend. The key is held by the server
// and never supplied by the dashboard user.
type Gemini struct {
	apiKey   string
	model    string
	newModel ModelFactory
}

// NewGemini builds the Gemini backend on top of langchaingo's googleai client.
func NewGemini(apiKey, model string) *Gemini {
	return NewGeminiWithFactory(apiKey, model, openGoogleAI)
}

// NewGeminiWithFactory allows injecting the model constructor (used in tests).
func NewGeminiWithFactory(apiKey, model string, f ModelFactory) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model, newModel: f}
}

func openGoogleAI(ctx context.Context, apiKey, model string) (llms.Model, error) {
	return googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
}

func (g *Gemini) Name() string  { return BackendGemini }
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Authenticate() error {
	if strings.TrimSpace(g.apiKey) == "" {
		return &CredentialError{Backend: BackendGemini, Setting: "GOOGLE_API_KEY"}
	}
	return nil
}

// Complete generates a single completion for prompt.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	if err := g.Authenticate(); err != nil {
		return "", err
	}
	m, err := g.newModel(ctx, g.apiKey, g.model)
	if err != nil {
		return "", classifyModelErr(err)
	}
	text, err := llms.GenerateFromSinglePrompt(ctx, m, prompt)
	if err != nil {
		return "", classifyModelErr(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Backend: BackendGemini, Err: errors.New("empty completion")}
	}
	return text, nil
}

// classifyModelErr separates transport failures from provider rejections.
func classifyModelErr(err error) error {
	var nerr net.Error
	var uerr *url.Error
	if errors.As(err, &nerr) || errors.As(err, &uerr) {
		return &NetworkError{Backend: BackendGemini, Err: err}
	}
	return &UpstreamError{Backend: BackendGemini, Err: err}
}
