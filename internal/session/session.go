package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/medintel/internal/analysis"
)

// CookieName carries the session id between dashboard requests.
const CookieName = "medintel_session"

var (
	// ErrNotFound is returned by stores for unknown or expired ids.
	ErrNotFound = errors.New("session not found")
	// ErrNoData is returned by SetAI when no dataset is loaded.
	ErrNoData = errors.New("no dataset loaded")
	// ErrDataChanged is returned when a result was computed for a dataset
	// that has since been replaced.
	ErrDataChanged = errors.New("dataset changed while the analysis was running")
)

// AIResponse is the last successful analysis text.
type AIResponse struct {
	Text    string    `json:"text"`
	Backend string    `json:"backend,omitempty"`
	Model   string    `json:"model,omitempty"`
	At      time.Time `json:"at,omitempty"`
}

// Session is the per-user dashboard state. Handlers load it, apply one
// transition and save it back.
type Session struct {
	ID            string            `json:"id"`
	Dataset       *analysis.Dataset `json:"dataset,omitempty"`
	DataVersion   string            `json:"data_version,omitempty"`
	AI            AIResponse        `json:"ai"`
	OpenRouterKey string            `json:"openrouter_key,omitempty"`
	Model         string            `json:"model,omitempty"`
	Theme         string            `json:"theme,omitempty"`
	LastError     string            `json:"last_error,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// New returns an empty session with a fresh id.
func New() *Session {
	return &Session{ID: uuid.NewString(), UpdatedAt: time.Now().UTC()}
}

// ValidID reports whether id looks like an id issued by New.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }

// ReplaceDataset installs a freshly cleaned dataset. Any earlier analysis
// described the old data and is discarded.
func (s *Session) ReplaceDataset(ds *analysis.Dataset) {
	s.Dataset = ds
	s.DataVersion = uuid.NewString()
	s.AI = AIResponse{}
	s.LastError = ""
	s.touch()
}

// FailIngest records a failed ingestion; dataset and analysis are cleared.
func (s *Session) FailIngest(err error) {
	s.Dataset = nil
	s.DataVersion = uuid.NewString()
	s.AI = AIResponse{}
	s.LastError = errText(err)
	s.touch()
}

// FailAI records a failed analysis of the dataset identified by version;
// the dataset is kept. A failure for a replaced dataset is ignored.
func (s *Session) FailAI(version string, err error) error {
	if version != s.DataVersion {
		return ErrDataChanged
	}
	s.AI = AIResponse{}
	s.LastError = errText(err)
	s.touch()
	return nil
}

// SetAI stores a successful analysis computed against the dataset
// identified by version.
func (s *Session) SetAI(version string, r AIResponse) error {
	if !s.HasData() {
		return ErrNoData
	}
	if version != s.DataVersion {
		return ErrDataChanged
	}
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}
	s.AI = r
	s.LastError = ""
	s.touch()
	return nil
}

// HasData reports whether a non-empty dataset is loaded.
func (s *Session) HasData() bool { return !s.Dataset.Empty() }

// CanExport reports whether a report can be produced.
func (s *Session) CanExport() bool {
	return s.HasData() && strings.TrimSpace(s.AI.Text) != ""
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
