package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTransactionCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cars").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewTxManager(db)
	err = m.WithinTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		// nested calls join the outer transaction
		return m.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := Conn(ctx, db).ExecContext(ctx, "UPDATE cars SET status = 'AVAILABLE'")
			return err
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransactionRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewTxManager(db).WithinTransaction(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransactionRollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = NewTxManager(db).WithinTransaction(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnWithoutTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.False(t, InTx(context.Background()))
	assert.Same(t, db, Conn(context.Background(), db))
}

func TestTxManagerUsesReadCommitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := NewTxManager(db)
	require.NotNil(t, m.opts)
	assert.Equal(t, sql.LevelReadCommitted, m.opts.Isolation)
	assert.False(t, m.opts.ReadOnly)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, m.WithinTransaction(context.Background(), func(context.Context) error { return nil }))
	assert.NoError(t, mock.ExpectationsWereMet())
}
