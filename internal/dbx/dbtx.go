// Package dbx holds the small database/sql helpers shared by the local
// SQLite repositories. The session store uses WithTx so that the token and
// the user record are written and cleared together.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrBegin  = errors.New("begin transaction")
	ErrCommit = errors.New("commit transaction")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository built over
// it works the same inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner starts transactions. *sql.DB and *sql.Conn implement it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside one transaction and commits only if fn returns nil.
// When fn fails the transaction is rolled back and a rollback failure, if
// any, is joined to fn's error. A panic in fn rolls back and is re-raised.
//
// Repositories must be built over tx inside fn:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return metadata.NewSQLiteRepository(tx).Set(ctx, "k", v)
//	})
func WithTx(ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBegin, err)
	}

	// done stays false only while fn panics.
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	err = fn(ctx, tx)
	done = true
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	return nil
}
