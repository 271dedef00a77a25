package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_SaveAndRead(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []*sagalog.SagaLog{
		{SagaID: "run-1", Status: sagalog.StatusStarted, Payload: `{"couponCode":"SAVE10"}`, ErrorMessages: "[]", UpdatedAt: base},
		{SagaID: "run-1", Status: sagalog.StatusStepDone, CurrentStep: "Place_Order_Step", ErrorMessages: "[]", UpdatedAt: base.Add(time.Second)},
		{SagaID: "run-2", Status: sagalog.StatusStarted, ErrorMessages: "[]", UpdatedAt: base},
		{SagaID: "run-1", Status: sagalog.StatusFailed, CurrentStep: "Process_Payment_Step", ErrorMessages: `["declined"]`, UpdatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Save(ctx, e))
	}

	latest, err := repo.GetLatest(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusFailed, latest.Status)
	assert.Equal(t, []string{"declined"}, latest.Errors())
	assert.True(t, latest.UpdatedAt.Equal(base.Add(2*time.Second)))

	history, err := repo.History(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, `{"couponCode":"SAVE10"}`, history[0].Payload)
	assert.Empty(t, history[1].Payload)
	assert.Equal(t, "Place_Order_Step", history[1].CurrentStep)
}

func TestRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	_, err := repo.GetLatest(ctx, "missing")
	assert.ErrorIs(t, err, sagalog.ErrNotFound)

	_, err = repo.History(ctx, "missing")
	assert.ErrorIs(t, err, sagalog.ErrNotFound)
}

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS checkout_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	repo, err := New(db)
	require.NoError(t, err)
	return repo, mock
}

func TestRepository_SaveError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkout_runs")).
		WillReturnError(errors.New("disk I/O error"))

	err := repo.Save(context.Background(), &sagalog.SagaLog{SagaID: "run-1", Status: sagalog.StatusStarted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CorruptTimestamp(t *testing.T) {
	repo, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"saga_id", "status", "current_step", "payload", "error_messages", "trace_id", "span_id", "updated_at"}).
		AddRow("run-1", "STARTED", "", "", "[]", "", "", "yesterday")
	mock.ExpectQuery(regexp.QuoteMeta("FROM   checkout_runs")).WithArgs("run-1").WillReturnRows(rows)

	_, err := repo.GetLatest(context.Background(), "run-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sagalog.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_SchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only"))
	_, err = New(db)
	assert.Error(t, err)
}
