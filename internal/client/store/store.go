// Package store opens the client's local SQLite database, applies the
// embedded migrations and bundles the repositories the application works
// with.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dkovalev/lotkeeper/internal/client/migrations"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/auctions"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/blobs"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/lots"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/media"
	"github.com/dkovalev/lotkeeper/internal/client/repositories/meta"
)

// Store owns the database handle and the repositories built on it.
type Store struct {
	DB       *sql.DB
	Auctions auctions.Repository
	Lots     lots.Repository
	Media    media.Repository
	Blobs    blobs.Repository
	Meta     meta.Repository
}

// Open opens (or creates) the database at dsn, runs migrations and wires the
// repositories. The single connection plus WAL keeps writers from tripping
// over each other; busy_timeout gives short contention a chance to clear
// before dbx.IsBusy retries kick in.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
		`PRAGMA busy_timeout=5000`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		DB:       db,
		Auctions: auctions.NewSQLiteRepository(db),
		Lots:     lots.NewSQLiteRepository(db),
		Media:    media.NewSQLiteRepository(db),
		Blobs:    blobs.NewSQLiteRepository(db),
		Meta:     meta.NewSQLiteRepository(db),
	}, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
