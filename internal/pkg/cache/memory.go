package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is the in-process Cache used when no redis address is
// configured (local development, tests).
type MemoryCache struct {
	mu          sync.RWMutex
	store       map[string]memoryEntry
	serviceName string
	now         func() time.Time
}

func NewMemoryCache(serviceName string) *MemoryCache {
	return &MemoryCache{
		store:       make(map[string]memoryEntry),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	entry := m.entry(value, ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = entry
	return nil
}

func (m *MemoryCache) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	entry := m.entry(value, ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.store[key]; ok && !m.expired(cur) {
		return false, nil
	}
	m.store[key] = entry
	return true, nil
}

func (m *MemoryCache) entry(value interface{}, ttl time.Duration) memoryEntry {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	e := memoryEntry{value: s}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.store[key]
	if !ok || m.expired(entry) {
		return "", nil
	}
	return entry.value, nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

func (m *MemoryCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", m.serviceName, operation, key)
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryCache) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, entry := range m.store {
		if m.expired(entry) {
			delete(m.store, k)
			removed++
		}
	}
	return removed
}

func (m *MemoryCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}
