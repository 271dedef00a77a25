// Package sqlite stores checkout run entries in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"

	// Pure-Go driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_runs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT NOT NULL,
    status          TEXT NOT NULL,
    current_step    TEXT NOT NULL DEFAULT '',
    -- written on STARTED only
    payload         TEXT,
    error_messages  TEXT NOT NULL DEFAULT '[]',
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',
    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_runs_saga_id ON checkout_runs(saga_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_runs_trace_id ON checkout_runs(trace_id);
`

const selectColumns = `saga_id, status, current_step, COALESCE(payload,''), error_messages, trace_id, span_id, updated_at`

// Repository stores checkout run entries in a single SQLite table,
// one row per transition.
type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path with WAL journaling and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	repo, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// New wraps an already opened database and applies the schema.
func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO checkout_runs
			(saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save entry for %q: %w", entry.SagaID, err)
	}
	return nil
}

func (r *Repository) GetLatest(ctx context.Context, sagaID string) (*sagalog.SagaLog, error) {
	q := `SELECT ` + selectColumns + `
		FROM   checkout_runs
		WHERE  saga_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, q, sagaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: %q: %w", sagaID, sagalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", sagaID, err)
	}
	return entry, nil
}

func (r *Repository) History(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	q := `SELECT ` + selectColumns + `
		FROM   checkout_runs
		WHERE  saga_id = ?
		ORDER  BY updated_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sagaID, err)
	}
	defer rows.Close()

	var out []sagalog.SagaLog
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: history for %q: %w", sagaID, err)
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", sagaID, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("sqlite: %q: %w", sagaID, sagalog.ErrNotFound)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*sagalog.SagaLog, error) {
	var entry sagalog.SagaLog
	var updatedAt string
	if err := s.Scan(
		&entry.SagaID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	entry.UpdatedAt = t
	return &entry, nil
}

// nullableString stores NULL rather than '' for the payload of non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
