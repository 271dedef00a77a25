package sagalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("sagalog: run not found")

// Repository is an append-only store of run entries.
type Repository interface {
	Save(ctx context.Context, entry *SagaLog) error
	// GetLatest returns ErrNotFound when the run has no entries.
	GetLatest(ctx context.Context, sagaID string) (*SagaLog, error)
	// History returns every entry of a run, oldest first.
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
}
