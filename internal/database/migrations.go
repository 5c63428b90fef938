package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

//go:embed schema.sql
var initialSchema string

// Migrator handles database schema migrations
type Migrator interface {
	// Migrate applies all pending migrations
	Migrate(ctx context.Context) error

	// CurrentVersion returns the current schema version
	CurrentVersion(ctx context.Context) (int, error)

	// Rollback rolls back to a target version
	Rollback(ctx context.Context, targetVersion int) error
}

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
	down    string
}

type migrator struct {
	db         *DB
	migrations []migration
}

// NewMigrator creates a new database migrator
func NewMigrator(db *DB) Migrator {
	return &migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

// getMigrations returns all available migrations in order
func getMigrations() []migration {
	migrations := []migration{
		{
			version: 1,
			name:    "initial_schema",
			up:      initialSchema,
			down:    "DROP TABLE IF EXISTS predictions;",
		},
		{
			version: 2,
			name:    "backend_scores",
			up: `
CREATE TABLE IF NOT EXISTS backend_scores (
    backend   TEXT PRIMARY KEY,
    correct   INTEGER NOT NULL DEFAULT 0,
    incorrect INTEGER NOT NULL DEFAULT 0,
    partial   INTEGER NOT NULL DEFAULT 0,
    total     INTEGER NOT NULL DEFAULT 0
);`,
			down: "DROP TABLE IF EXISTS backend_scores;",
		},
		{
			version: 3,
			name:    "archive_batches",
			up: `
CREATE TABLE IF NOT EXISTS archive_batches (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    file_name    TEXT NOT NULL UNIQUE,
    record_count INTEGER NOT NULL,
    oldest_at    TIMESTAMP NOT NULL,
    newest_at    TIMESTAMP NOT NULL,
    created_at   TIMESTAMP NOT NULL
);`,
			down: "DROP TABLE IF EXISTS archive_batches;",
		},
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations
}

func (m *migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	if err != nil {
		return types.WrapError(types.DB_MIGRATION_FAILED, "failed to create schema_migrations table", err)
	}
	return nil
}

// Migrate applies all pending migrations in version order
func (m *migrator) Migrate(ctx context.Context) error {
	if err := m.ensureVersionTable(ctx); err != nil {
		return err
	}

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if mig.version <= current {
			continue
		}
		err := m.db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, mig.up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				mig.version, mig.name)
			return err
		})
		if err != nil {
			return types.WrapError(types.DB_MIGRATION_FAILED,
				fmt.Sprintf("migration %d (%s) failed", mig.version, mig.name), err)
		}
	}
	return nil
}

// CurrentVersion returns the highest applied migration version, 0 if none
func (m *migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}

	var version sql.NullInt64
	err := m.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, types.WrapError(types.DB_MIGRATION_FAILED, "failed to read schema version", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// Rollback reverses migrations above targetVersion, newest first
func (m *migrator) Rollback(ctx context.Context, targetVersion int) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if targetVersion >= current {
		return nil
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.version > current || mig.version <= targetVersion {
			continue
		}
		err := m.db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, mig.down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"DELETE FROM schema_migrations WHERE version = ?", mig.version)
			return err
		})
		if err != nil {
			return types.WrapError(types.DB_MIGRATION_FAILED,
				fmt.Sprintf("rollback of migration %d (%s) failed", mig.version, mig.name), err)
		}
	}
	return nil
}
