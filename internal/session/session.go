package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrActionInProgress is returned when a session already has an analysis running.
var ErrActionInProgress = errors.New("another analysis is already running for this session")

// Session is one user's interactive state. It is safe for concurrent use.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.RWMutex
	cvText   string
	apiKey   string
	lastSeen time.Time

	action  sync.Mutex
	history *History
}

// New creates an empty session.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		lastSeen:  now,
		history:   NewHistory(),
	}
}

// SetCV replaces the stored CV text.
func (s *Session) SetCV(text string) {
	s.mu.Lock()
	s.cvText = text
	s.mu.Unlock()
}

// CV returns the stored CV text.
func (s *Session) CV() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cvText
}

// HasCV reports whether a non-blank CV is stored.
func (s *Session) HasCV() bool {
	return strings.TrimSpace(s.CV()) != ""
}

// SetAPIKey stores the AI backend key for this session only.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	s.apiKey = strings.TrimSpace(key)
	s.mu.Unlock()
}

// APIKey returns the stored AI backend key.
func (s *Session) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// History returns the session's analysis log.
func (s *Session) History() *History {
	return s.history
}

// BeginAction claims the session for one analysis. The returned func releases it.
func (s *Session) BeginAction() (func(), error) {
	if !s.action.TryLock() {
		return nil, ErrActionInProgress
	}
	return s.action.Unlock, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
