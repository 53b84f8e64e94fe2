package ai

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned for model ids outside the OpenRouter menu.
var ErrUnknownModel = errors.New("model is not in the supported model menu")

// ErrUnknownBackend is returned by NewBackend for unregistered names.
var ErrUnknownBackend = errors.New("unknown AI backend")

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	s := fmt.Sprintf("api error: status=%d", e.StatusCode)
	if e.Code != "" {
		s += " code=" + e.Code
	}
	if e.RequestID != "" {
		s += " request_id=" + e.RequestID
	}
	if e.Message != "" {
		s += " message=" + e.Message
	}
	return s
}

// CredentialError means a server-held credential is not configured.
type CredentialError struct {
	Backend string
	Setting string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: credential %s is not configured", e.Backend, e.Setting)
}

// AuthError means the caller supplied no API key.
type AuthError struct {
	Backend string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: API key is missing", e.Backend)
}

// NetworkError wraps a transport failure talking to a backend.
type NetworkError struct {
	Backend string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Backend, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError reports a non-success answer from a backend. API is set
// when the provider returned an HTTP status.
type UpstreamError struct {
	Backend string
	API     *APIError
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.API != nil:
		return fmt.Sprintf("%s: %s", e.Backend, e.API.Error())
	case e.Err != nil:
		return fmt.Sprintf("%s: upstream error: %v", e.Backend, e.Err)
	}
	return e.Backend + ": upstream error"
}

func (e *UpstreamError) Unwrap() error {
	if e.API != nil {
		return e.API
	}
	return e.Err
}

// StatusCode returns the provider HTTP status, or 0 when none was received.
func (e *UpstreamError) StatusCode() int {
	if e.API == nil {
		return 0
	}
	return e.API.StatusCode
}
