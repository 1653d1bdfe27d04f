// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db provides the sync history store for Hostwarden.
// It wraps a single SQLite database (via the pure-Go modernc driver and the
// Bun query builder) behind a small Store interface so the rest of the
// application never touches SQL directly.
package db // import "github.com/toeirei/hostwarden/internal/db"

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/toeirei/hostwarden/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store defines the interface for all sync history operations.
type Store interface {
	// RecordSync appends one history row for a completed sync run.
	RecordSync(entry model.HistoryEntry) error
	// GetHistory returns history entries, most recent first. A limit of 0
	// returns everything.
	GetHistory(limit int) ([]model.HistoryEntry, error)
	// PruneHistory deletes all but the newest keep rows and reports how
	// many rows were removed.
	PruneHistory(keep int) (int, error)
	Close() error
}

// package-level variables
var (
	store Store
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// New opens the SQLite database at dsn, runs any pending migrations, and
// returns a Bun-backed Store. It also sets the package-level store used by
// the package helpers.
func New(dsn string) (Store, error) {
	start := time.Now()
	sqlDB, err := sqlOpenFunc("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// The history database is a small per-user file; a conservative pool is
	// plenty. In-memory databases get a single connection because each
	// SQLite connection to ":memory:" sees its own database, which would
	// make the migrated schema invisible to later queries.
	maxOpen, maxIdle := 4, 2
	if dsn == ":memory:" {
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	dbLogf("db: opened sqlite database in %s (conn max open=%d)", time.Since(start), maxOpen)

	migStart := time.Now()
	if err := RunMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	dbLogf("db: migrations completed in %s", time.Since(migStart))

	s := &SqliteStore{bun: bun.NewDB(sqlDB, sqlitedialect.New())}
	store = s
	return s, nil
}

// IsInitialized reports whether the package-level store has been set.
func IsInitialized() bool {
	return store != nil
}

// RunMigrations applies the embedded SQLite migrations that have not been
// applied yet, tracking them in the schema_migrations table.
func RunMigrations(db *sql.DB) error {
	const migrationsPath = "migrations/sqlite"

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No migrations embedded; nothing to do.
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	// Collect .up.sql files and sort them
	var ups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".up.sql") {
			ups = append(ups, name)
		}
	}
	sort.Strings(ups)

	if err := ensureSchemaMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		// Check if already applied.
		var exists int
		err := db.QueryRow("SELECT 1 FROM schema_migrations WHERE version = ?", version).Scan(&exists)
		if err == nil {
			// applied, skip
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		data, err := embeddedMigrations.ReadFile(path.Join(migrationsPath, fname))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fname, err)
		}

		// Apply within a transaction
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		if _, err := tx.Exec(string(data)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)", version, time.Now()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		dbLogf("db: applied migration %s", version)
	}

	return nil
}

// ensureSchemaMigrationsTable creates schema_migrations if missing.
func ensureSchemaMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`)
	return err
}

// RecordSync appends one history row using the package-level store.
func RecordSync(entry model.HistoryEntry) error {
	return store.RecordSync(entry)
}

// GetHistory returns history entries from the package-level store, most
// recent first.
func GetHistory(limit int) ([]model.HistoryEntry, error) {
	return store.GetHistory(limit)
}

// PruneHistory deletes all but the newest keep rows via the package-level store.
func PruneHistory(keep int) (int, error) {
	return store.PruneHistory(keep)
}
