package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/selection"
)

// Session ties a selection state machine to its id and single-use submission
// nonce. One session per browsing shopper.
type Session struct {
	ID        string
	Nonce     string
	Machine   *selection.Machine
	CreatedAt time.Time
}

// SessionStore is the in-memory session registry. Sessions expire after
// maxAge; the background worker prunes them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxAge   time.Duration
}

// NewSessionStore creates a store. maxAge <= 0 disables expiry.
func NewSessionStore(maxAge time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
	}
}

// Put registers a session.
func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get returns a live session. Expired sessions are treated as absent.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.maxAge > 0 && time.Since(sess.CreatedAt) > s.maxAge {
		s.Delete(id)
		return nil, false
	}
	return sess, true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of registered sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PruneExpired drops sessions past maxAge and returns how many were removed.
func (s *SessionStore) PruneExpired() int {
	if s.maxAge <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	cutoff := time.Now().Add(-s.maxAge)
	for id, sess := range s.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// newNonce generates the single-use submission token for a session.
func newNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}
