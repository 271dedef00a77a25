package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const (
	keyOperation  = "session"
	lockOperation = "session-lock"
)

// CacheStore keeps sessions as JSON in a cache.Cache. Every Save refreshes
// the TTL, so active sessions slide forward.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

var _ ports.SessionStore = (*CacheStore)(nil)

func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func (s *CacheStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return nil, nil
	}
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey(keyOperation, id))
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	if raw == "" {
		return nil, nil
	}
	var sess entity.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w: %w", id, ports.ErrCorruptSession, err)
	}
	return &sess, nil
}

func (s *CacheStore) Save(ctx context.Context, sess *entity.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", sess.ID, err)
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey(keyOperation, sess.ID), b, s.ttl); err != nil {
		return fmt.Errorf("session: save %s: %w", sess.ID, err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.cache.GenerateKey(keyOperation, id)); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

func (s *CacheStore) Lock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.cache.SetNX(ctx, s.cache.GenerateKey(lockOperation, id), "1", ttl)
	if err != nil {
		return false, fmt.Errorf("session: lock %s: %w", id, err)
	}
	return ok, nil
}

func (s *CacheStore) Unlock(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.cache.GenerateKey(lockOperation, id)); err != nil {
		return fmt.Errorf("session: unlock %s: %w", id, err)
	}
	return nil
}
