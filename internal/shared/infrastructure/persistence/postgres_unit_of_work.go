package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxTxKey struct{}

// PgxExecutor is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type PgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresExecutor returns the transaction bound to the context, or the
// pool when no unit of work is open.
func PostgresExecutor(ctx context.Context, pool *pgxpool.Pool) PgxExecutor {
	if tx, ok := ctx.Value(pgxTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// PostgresUnitOfWork coordinates transactions over a pgx pool.
type PostgresUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewPostgresUnitOfWork creates a unit of work over the given pool.
func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool}
}

// Begin starts a transaction and binds it to the returned context.
func (u *PostgresUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(pgxTxKey{}).(pgx.Tx); ok {
		return nil, fmt.Errorf("unit of work already active")
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return context.WithValue(ctx, pgxTxKey{}, tx), nil
}

// Commit commits the transaction bound to the context.
func (u *PostgresUnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(pgxTxKey{}).(pgx.Tx)
	if !ok {
		return fmt.Errorf("no active unit of work")
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction bound to the context.
func (u *PostgresUnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(pgxTxKey{}).(pgx.Tx)
	if !ok {
		return fmt.Errorf("no active unit of work")
	}
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
