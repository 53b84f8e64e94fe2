package ai

import (
	"context"
	"errors"
	"time"
)

// OpenRouter is the bring-your-own-key backend.
type OpenRouter struct {
	client *Client
	apiKey string
	model  string
}

// NewOpenRouter checks the key, then validates the model against the menu.
// A missing key is reported as *AuthError even when the model is also
// invalid.
func NewOpenRouter(apiKey, model, baseURL string, timeout time.Duration) (*OpenRouter, error) {
	if apiKey == "" {
		return nil, &AuthError{Backend: BackendOpenRouter}
	}
	id, err := ResolveModel(model)
	if err != nil {
		return nil, err
	}
	return &OpenRouter{
		client: NewClientWithBaseURL(apiKey, timeout, baseURL),
		apiKey: apiKey,
		model:  id,
	}, nil
}

func (o *OpenRouter) Name() string  { return BackendOpenRouter }
func (o *OpenRouter) Model() string { return o.model }

func (o *OpenRouter) Authenticate() error {
	if o.apiKey == "" {
		return &AuthError{Backend: BackendOpenRouter}
	}
	return nil
}

// Complete sends the prompt as a single user message and returns the first
// choice's content.
func (o *OpenRouter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := o.Authenticate(); err != nil {
		return "", err
	}
	resp, err := o.client.Generate(ctx, GenerateRequest{
		Model:    o.model,
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Backend: BackendOpenRouter, Err: errors.New("response contained no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
