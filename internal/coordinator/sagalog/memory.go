package sagalog

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps entries in process memory. It is used when no
// checkout log file is configured, and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]SagaLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]SagaLog)}
}

func (r *MemoryRepository) Save(_ context.Context, entry *SagaLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.SagaID] = append(r.entries[entry.SagaID], *entry)
	return nil
}

func (r *MemoryRepository) GetLatest(_ context.Context, sagaID string) (*SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.entries[sagaID]
	if len(list) == 0 {
		return nil, fmt.Errorf("memory: %q: %w", sagaID, ErrNotFound)
	}
	latest := list[len(list)-1]
	return &latest, nil
}

func (r *MemoryRepository) History(_ context.Context, sagaID string) ([]SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.entries[sagaID]
	if len(list) == 0 {
		return nil, fmt.Errorf("memory: %q: %w", sagaID, ErrNotFound)
	}
	return append([]SagaLog(nil), list...), nil
}
