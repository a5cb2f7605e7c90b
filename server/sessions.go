package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionInfo is the store's record of one live connection.
type SessionInfo struct {
	ID      string
	Started time.Time
	runner  *Runner
}

// SessionStore tracks the sessions a listening server has spawned, one per
// websocket connection.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionInfo
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*SessionInfo)}
}

// Add registers a runner and returns its new session id.
func (s *SessionStore) Add(r *Runner) *SessionInfo {
	info := &SessionInfo{
		ID:      uuid.New().String(),
		Started: time.Now(),
		runner:  r,
	}
	s.mu.Lock()
	s.sessions[info.ID] = info
	s.mu.Unlock()
	return info
}

// Get retrieves a session by id.
func (s *SessionStore) Get(id string) (*SessionInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.sessions[id]
	return info, ok
}

// Remove drops a finished session.
func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Each calls fn for every live session.
func (s *SessionStore) Each(fn func(*SessionInfo)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, info := range s.sessions {
		fn(info)
	}
}
