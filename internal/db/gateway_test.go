package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGateway(t *testing.T) (*Gateway, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewGateway(sqlDB), sqlDB, mock
}

func assertReleased(t *testing.T, sqlDB *sql.DB) {
	t.Helper()
	assert.Zero(t, sqlDB.Stats().InUse, "connection should be released")
}

func TestGateway_ReadNoTransaction(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	var n int
	err := gw.Read(context.Background(), func(ctx context.Context, q Querier) error {
		return q.QueryRowContext(ctx, "SELECT 1").Scan(&n)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_ReadError(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)
	boom := errors.New("boom")

	err := gw.Read(context.Background(), func(context.Context, Querier) error { return boom })
	assert.ErrorIs(t, err, boom)
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_WriteCommits(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM costs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := gw.Write(context.Background(), func(ctx context.Context, q Querier) error {
		_, err := q.ExecContext(ctx, "DELETE FROM costs")
		return err
	})
	require.NoError(t, err)
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_WriteRollsBackOnError(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := gw.Write(context.Background(), func(context.Context, Querier) error { return boom })
	assert.ErrorIs(t, err, boom)
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_WriteRollbackFailure(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

	err := gw.Write(context.Background(), func(context.Context, Querier) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rollback: connection reset")
	assertReleased(t, sqlDB)
}

func TestGateway_WriteRollsBackOnPanic(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = gw.Write(context.Background(), func(context.Context, Querier) error { panic("kaboom") })
	})
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_BeginFailure(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many clients"))

	called := false
	err := gw.Write(context.Background(), func(context.Context, Querier) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.False(t, called)
	assertReleased(t, sqlDB)
}

func TestGateway_CommitFailure(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := gw.Write(context.Background(), func(context.Context, Querier) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_SnapshotCommitsAfterReads(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery("SELECT id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := gw.Snapshot(context.Background(), func(ctx context.Context, q Querier) error {
		var n, id int
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM costs").Scan(&n); err != nil {
			return err
		}
		return q.QueryRowContext(ctx, "SELECT id FROM costs").Scan(&id)
	})
	require.NoError(t, err)
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_SnapshotRollsBackOnError(t *testing.T) {
	gw, sqlDB, mock := setupGateway(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := gw.Snapshot(context.Background(), func(context.Context, Querier) error { return boom })
	assert.ErrorIs(t, err, boom)
	assertReleased(t, sqlDB)
	assert.NoError(t, mock.ExpectationsWereMet())
}
