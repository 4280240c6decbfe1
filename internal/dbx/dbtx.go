// Package dbx holds the transaction plumbing shared by the SQLite
// repositories.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is what a repository needs to run queries. *sql.DB, *sql.Conn and
// *sql.Tx all satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner starts transactions.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InTx runs fn inside one transaction and returns its result. The
// transaction commits only when fn returns a nil error; otherwise, and on
// panic, it is rolled back. Panics propagate.
//
//	n, err := dbx.InTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) (int, error) {
//	    repo := metadata.NewSQLiteRepository(tx)
//	    // Get, modify, Set
//	})
func InTx[T any](ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return zero, fmt.Errorf("begin tx: %w", err)
	}

	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	res, err := fn(ctx, tx)
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit tx: %w", err)
	}
	done = true
	return res, nil
}
