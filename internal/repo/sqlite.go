package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/pkordes/visa-planner/internal/domain"
)

// OpenSQLite opens the SQLite file at path in WAL mode. The pragmas travel
// in the DSN so every pooled connection gets them.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return db, nil
}

// sqliteKV is the SQLite implementation of KVStore.
type sqliteKV struct {
	db *sqlx.DB
}

// NewSQLiteKV constructs a KVStore over an open SQLite database whose
// migrations have been applied.
func NewSQLiteKV(db *sqlx.DB) KVStore {
	return &sqliteKV{db: db}
}

func (s *sqliteKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("repo.sqliteKV.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("repo.sqliteKV.Get: %w", err)
	}
	return value, nil
}

func (s *sqliteKV) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("repo.sqliteKV.Set: %w", err)
	}
	return nil
}

func (s *sqliteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("repo.sqliteKV.Delete: %w", err)
	}
	return nil
}
