package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTxRunnerCommits(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mentor_profiles")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewTxRunner(db).Run(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE mentor_profiles SET is_active = FALSE")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewTxRunner(db).Run(context.Background(), func(tx *sqlx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRetriesSerializationFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mentorship_requests")).WillReturnError(&pq.Error{Code: CodeSerializationFailure})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE mentorship_requests")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var retries []int
	runner := NewTxRunner(db, WithBackoff(0), WithRetryHook(func(attempt int, err error) {
		retries = append(retries, attempt)
	}))
	err := runner.Run(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE mentorship_requests SET status = 'accepted'")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, retries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerGivesUpAfterRetries(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE")).WillReturnError(&pq.Error{Code: CodeDeadlockDetected})
		mock.ExpectRollback()
	}

	err := NewTxRunner(db, WithRetries(1), WithBackoff(0)).Run(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE accounts SET active = TRUE")
		return err
	})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintHelpers(t *testing.T) {
	unique := &pq.Error{Code: CodeUniqueViolation, Constraint: "accounts_email_key"}
	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(unique, "other", "accounts_email_key"))
	assert.False(t, IsUniqueViolation(unique, "mentorship_requests_open_pair_idx"))
	assert.False(t, IsCheckViolation(unique))

	capacity := &pq.Error{Code: CodeCheckViolation, Constraint: "mentor_capacity"}
	assert.True(t, IsCheckViolation(capacity, "mentor_capacity"))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}
