package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

const migrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)
`

// Migrate applies every *.sql file in dir that has not been applied yet, in
// lexical order, and returns the names it applied.
func Migrate(db *sql.DB, dir string) ([]string, error) {
	if _, err := db.Exec(migrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(files)

	var applied []string
	for _, path := range files {
		name := filepath.Base(path)

		var done bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = ?)", name).Scan(&done); err != nil {
			return applied, err
		}
		if done {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		log.Info().Str("migration", name).Msg("applying migration")
		if err := applyMigration(db, name, string(content)); err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func applyMigration(db *sql.DB, name, content string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)", name, time.Now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}
