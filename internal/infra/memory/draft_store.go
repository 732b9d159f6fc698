package memory

import (
	"context"
	"sync"

	"esg-assessment-service/internal/domain"
)

// DraftStore keeps draft snapshots in process memory, like browser local storage.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string][]byte)}
}

func (s *DraftStore) GetDraft(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.drafts[key]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *DraftStore) SetDraft(_ context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.drafts[key] = cp
	s.mu.Unlock()
	return nil
}

func (s *DraftStore) RemoveDraft(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.drafts, key)
	s.mu.Unlock()
	return nil
}
