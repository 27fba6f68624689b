// Package persistence provides transaction management shared by the
// SQLite and PostgreSQL repository implementations. Transactions travel
// in the context so repositories join an open unit of work transparently.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

type sqliteTxKey struct{}

// Executor is the subset of database/sql shared by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteExecutor returns the transaction bound to the context, or the bare
// connection when no unit of work is open.
func SQLiteExecutor(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// SQLiteUnitOfWork coordinates transactions over a database/sql
// connection (modernc.org/sqlite driver).
type SQLiteUnitOfWork struct {
	db *sql.DB
}

// NewSQLiteUnitOfWork creates a unit of work over the given connection.
func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// Begin starts a transaction and binds it to the returned context.
func (u *SQLiteUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return nil, fmt.Errorf("unit of work already active")
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return context.WithValue(ctx, sqliteTxKey{}, tx), nil
}

// Commit commits the transaction bound to the context.
func (u *SQLiteUnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx)
	if !ok {
		return fmt.Errorf("no active unit of work")
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction bound to the context.
func (u *SQLiteUnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx)
	if !ok {
		return fmt.Errorf("no active unit of work")
	}
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
