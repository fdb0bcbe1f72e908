package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by pools, connections and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter opens transactions. *pgxpool.Pool and pgxmock pools satisfy it.
type TxStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// DB is what repositories need from the pool.
type DB interface {
	Querier
	TxStarter
}

// TxOptions is the isolation used by WithTx.
var TxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// WithTx executes fn inside a transaction. Any error returned by fn rolls the
// transaction back and is returned unchanged.
func WithTx(ctx context.Context, starter TxStarter, fn func(pgx.Tx) error) error {
	tx, err := starter.BeginTx(ctx, TxOptions)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	committed = true

	return nil
}

// UniqueViolationCode is the SQLSTATE raised on unique constraint violations.
const UniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique violation, optionally on the
// named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != UniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
