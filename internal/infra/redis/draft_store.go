package redis

import (
	"context"
	"errors"
	"time"

	"esg-assessment-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DraftStore keeps draft snapshots in Redis so any instance can restore them.
// A zero ttl keeps drafts until they are removed.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) GetDraft(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *DraftStore) SetDraft(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *DraftStore) RemoveDraft(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
