package redis

import (
	"context"
	"sync"
	"time"

	"esg-assessment-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Assessment hosts stay in process so timers and subscriptions keep working;
// Redis only carries a liveness marker per session so other instances can see
// which sessions are open. Drafts are shared through DraftStore.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Assessment
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(sessionID), a.Owner(), s.ttl).Err()
	return a, true
}

func (s *SessionStore) Get(sessionID string) (*app.Assessment, bool) {
	s.mu.RLock()
	a, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return a, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Live reports whether any instance holds the session open.
func (s *SessionStore) Live(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) key(sessionID string) string {
	return "assessment:session:" + sessionID
}
