package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("dialect/sql: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// TxFunc is the body of a transaction started by WithTx.
type TxFunc func(ctx context.Context, tx *Tx) error

// TxOption configures the transaction started by WithTx.
type TxOption func(*TxOptions)

// WithIsolation sets the isolation level of the transaction.
func WithIsolation(level sql.IsolationLevel) TxOption {
	return func(o *TxOptions) {
		o.Isolation = level
	}
}

// WithReadOnly marks the transaction as read-only.
func WithReadOnly() TxOption {
	return func(o *TxOptions) {
		o.ReadOnly = true
	}
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back when fn fails or panics.
func WithTx(ctx context.Context, drv *Driver, fn TxFunc, opts ...TxOption) (err error) {
	var txOpts *TxOptions
	if len(opts) > 0 {
		txOpts = new(TxOptions)
		for _, opt := range opts {
			opt(txOpts)
		}
	}
	tx, err := drv.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("dialect/sql: begin transaction: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err = fn(ctx, tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, &RollbackError{Err: rerr})
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: commit transaction: %w", err)
	}
	return nil
}
