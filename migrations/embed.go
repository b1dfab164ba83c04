// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests and server bootstrap.
// Each store dialect has its own directory.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// SQLite and Postgres hold the migrations of each dialect rooted at the
// directory, ready to pass to goose.NewProvider.
var (
	SQLite   = mustSub("sqlite")
	Postgres = mustSub("postgres")
)

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic("migrations: " + err.Error())
	}
	return sub
}

// FS returns the migration set for a goose dialect.
func FS(dialect goose.Dialect) (fs.FS, error) {
	switch dialect {
	case goose.DialectSQLite3:
		return SQLite, nil
	case goose.DialectPostgres:
		return Postgres, nil
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// Up applies every pending migration for dialect and returns the number of
// migrations applied.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) (int, error) {
	fsys, err := FS(dialect)
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	return len(results), nil
}
