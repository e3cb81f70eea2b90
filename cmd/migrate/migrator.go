package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrNothingToRollback is returned when no migration has been applied
var ErrNothingToRollback = errors.New("no migrations to rollback")

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(32) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// migrator applies the embedded SQL files, one transaction per file. It
// shares the schema_migrations table with the API's startup migrations.
type migrator struct {
	db    *sql.DB
	files fs.FS
}

func newMigrator(db *sql.DB, files fs.FS) *migrator {
	return &migrator{db: db, files: files}
}

func (m *migrator) up() error {
	if _, err := m.db.Exec(createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := database.MigrationFiles(m.files)
	if err != nil {
		return err
	}

	applied := 0
	for _, name := range files {
		version := database.MigrationVersion(name)

		var exists bool
		err := m.db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			logging.Debug().Str("migration", name).Msg("migration already applied")
			continue
		}

		content, err := fs.ReadFile(m.files, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if err := m.inTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", name, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", version, name); err != nil {
				return fmt.Errorf("failed to record migration: %w", err)
			}
			return nil
		}); err != nil {
			return err
		}

		logging.Info().Str("migration", name).Msg("applied migration")
		applied++
	}

	logging.Info().Int("applied", applied).Msg("all migrations applied")
	return nil
}

// rollback reverts the most recently applied migration using its
// <name>_rollback.sql script.
func (m *migrator) rollback() error {
	var version, name string
	err := m.db.QueryRow("SELECT version, name FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1").
		Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNothingToRollback
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackFile := database.RollbackFile(name)
	content, err := fs.ReadFile(m.files, rollbackFile)
	if err != nil {
		return fmt.Errorf("rollback file not found: %s: %w", rollbackFile, err)
	}

	if err := m.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	logging.Info().Str("migration", name).Msg("rolled back migration")
	return nil
}

func (m *migrator) status(w io.Writer) error {
	rows, err := m.db.Query("SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version, name, appliedAt string
		if err := rows.Scan(&version, &name, &appliedAt); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", version, name, appliedAt)
	}
	return rows.Err()
}

func (m *migrator) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
