package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range msgs {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompt = tc.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, opts...)
}

func TestGeminiMissingCredential(t *testing.T) {
	opened := false
	g := NewGeminiWithFactory("", "", func(context.Context, string, string) (llms.Model, error) {
		opened = true
		return &fakeModel{}, nil
	})
	_, err := g.Complete(context.Background(), "p")
	var ce *CredentialError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CredentialError, got %T: %v", err, err)
	}
	if opened {
		t.Fatalf("model must not be opened without a credential")
	}
	if g.Model() != DefaultGeminiModel {
		t.Fatalf("unexpected default model %q", g.Model())
	}
}

func TestGeminiComplete(t *testing.T) {
	fm := &fakeModel{reply: "two paragraphs and three recommendations"}
	var gotKey, gotModel string
	g := NewGeminiWithFactory("g-key", "gemini-2.0-flash", func(_ context.Context, key, model string) (llms.Model, error) {
		gotKey, gotModel = key, model
		return fm, nil
	})
	out, err := g.Complete(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != fm.reply || fm.prompt != "the prompt" {
		t.Fatalf("unexpected exchange: out=%q prompt=%q", out, fm.prompt)
	}
	if gotKey != "g-key" || gotModel != "gemini-2.0-flash" {
		t.Fatalf("factory got key=%q model=%q", gotKey, gotModel)
	}
}

func TestGeminiUpstreamFailure(t *testing.T) {
	g := NewGeminiWithFactory("k", "", func(context.Context, string, string) (llms.Model, error) {
		return &fakeModel{err: errors.New("quota exhausted")}, nil
	})
	_, err := g.Complete(context.Background(), "p")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}

	g = NewGeminiWithFactory("k", "", func(context.Context, string, string) (llms.Model, error) {
		return &fakeModel{reply: "  "}, nil
	})
	if _, err := g.Complete(context.Background(), "p"); !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError for empty completion, got %v", err)
	}
}

func TestNewBackendRegistry(t *testing.T) {
	b, err := NewBackend(BackendGemini, BackendConfig{GoogleAPIKey: "k"})
	if err != nil || b.Name() != BackendGemini {
		t.Fatalf("gemini backend: %v %v", b, err)
	}
	b, err = NewBackend(BackendOpenRouter, BackendConfig{APIKey: "k", Model: "openai/gpt-4o"})
	if err != nil || b.Name() != BackendOpenRouter || ModelOf(b) != "openai/gpt-4o" {
		t.Fatalf("openrouter backend: %v %v", b, err)
	}
	if _, err := NewBackend("ollama", BackendConfig{}); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if got := Backends(); len(got) != 2 || got[0] != BackendGemini {
		t.Fatalf("unexpected backends %v", got)
	}
}
