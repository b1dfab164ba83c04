package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/visa-planner/internal/domain"
)

// db is the subset of pgx methods the Postgres store needs.
// Both *pgxpool.Pool and pgx.Tx satisfy it, so tests can run every query
// inside a transaction that is rolled back afterwards.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgKV is the Postgres implementation of KVStore.
type pgKV struct {
	db db
}

// NewPostgresKV constructs a KVStore backed by the provided db connection.
func NewPostgresKV(db db) KVStore {
	return &pgKV{db: db}
}

func (r *pgKV) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM kv_store WHERE key = @key`

	var value string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("repo.pgKV.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("repo.pgKV.Get: %w", err)
	}
	return value, nil
}

func (r *pgKV) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO kv_store (key, value)
		VALUES (@key, @value)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": value}); err != nil {
		return fmt.Errorf("repo.pgKV.Set: %w", err)
	}
	return nil
}

func (r *pgKV) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_store WHERE key = @key`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.pgKV.Delete: %w", err)
	}
	return nil
}
