package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// LockKey serializes concurrent transactions touching the same logical key,
// e.g. both users swiping one property at the same instant. The advisory
// lock is transaction-scoped and released automatically on commit/rollback.
func LockKey(ctx context.Context, tx pgx.Tx, key string) error {
	if tx == nil {
		return errors.New("transaction is required")
	}
	if key == "" {
		return errors.New("lock key is required")
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, hashLockKey(key)); err != nil {
		return fmt.Errorf("acquire advisory lock %q: %w", key, err)
	}

	return nil
}

// TryLockKey is the non-blocking variant, taken by the daily cycle before
// writing a date's snapshot so a concurrent replay aborts instead of
// blocking.
func TryLockKey(ctx context.Context, tx pgx.Tx, key string) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction is required")
	}

	var acquired bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, hashLockKey(key)).Scan(&acquired); err != nil {
		return false, fmt.Errorf("try advisory lock %q: %w", key, err)
	}

	return acquired, nil
}

func hashLockKey(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
