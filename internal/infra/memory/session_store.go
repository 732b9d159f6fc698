package memory

import (
	"sync"

	"esg-assessment-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Assessment
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Assessment),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, create func() *app.Assessment) (*app.Assessment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.sessions[sessionID]; ok {
		return a, false
	}
	a := create()
	s.sessions[sessionID] = a
	return a, true
}

func (s *SessionStore) Get(sessionID string) (*app.Assessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.sessions[sessionID]
	return a, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports how many sessions are live.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
