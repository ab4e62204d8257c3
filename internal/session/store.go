package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Store keeps sessions in memory, keyed by ID. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store. A non-positive ttl selects DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new empty session.
func (s *Store) Create() *Session {
	sess := New()
	sess.touch(s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a live session and marks it as recently used.
func (s *Store) Get(id uuid.UUID) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := s.now()
	if now.Sub(sess.LastSeen()) > s.ttl {
		s.Delete(id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Delete drops a session.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions idle for longer than the TTL.
func (s *Store) Prune() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
