package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// TxFunc is the unit of work executed inside a transaction.
type TxFunc func(tx *sqlx.Tx) error

// TxOption configures a TxRunner.
type TxOption func(*TxRunner)

// WithRetries sets how many times a serialization failure or deadlock is replayed.
func WithRetries(n int) TxOption {
	return func(r *TxRunner) {
		if n >= 0 {
			r.retries = n
		}
	}
}

// WithBackoff sets the base delay between replays; it grows linearly per attempt.
func WithBackoff(d time.Duration) TxOption {
	return func(r *TxRunner) {
		if d >= 0 {
			r.backoff = d
		}
	}
}

// WithRetryHook registers a callback invoked before each replay.
func WithRetryHook(fn func(attempt int, err error)) TxOption {
	return func(r *TxRunner) {
		r.onRetry = fn
	}
}

// TxRunner executes work in a transaction and replays it on transient conflicts.
type TxRunner struct {
	db      *sqlx.DB
	retries int
	backoff time.Duration
	onRetry func(attempt int, err error)
}

// NewTxRunner constructs a runner with three retries and a 25ms base backoff.
func NewTxRunner(db *sqlx.DB, opts ...TxOption) *TxRunner {
	r := &TxRunner{db: db, retries: 3, backoff: 25 * time.Millisecond}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run executes fn, committing on success and rolling back on any error or panic.
// fn may run more than once, so it must not have side effects outside tx.
func (r *TxRunner) Run(ctx context.Context, fn TxFunc) error {
	for attempt := 0; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil || !IsRetryable(err) || attempt >= r.retries {
			return err
		}
		if r.onRetry != nil {
			r.onRetry(attempt+1, err)
		}
		timer := time.NewTimer(r.backoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *TxRunner) runOnce(ctx context.Context, fn TxFunc) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
