package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotFound returned when the requested item is not in the store
var ErrNotFound = errors.New("item not found")

// migrations indexed by schema version - 1, never edit applied entries, append new ones
var migrations = []string{
	// version 1
	`
	CREATE TABLE IF NOT EXISTS items (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		description TEXT,
		update_marker TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tracked (
		url TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK (status IN ('watched', 'ignored')),
		title TEXT NOT NULL DEFAULT '',
		description TEXT,
		priority REAL,
		seen_marker TEXT,
		added_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (url) REFERENCES items(url)
	);
	CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
	CREATE INDEX IF NOT EXISTS idx_tracked_status ON tracked(status);
	`,
}

// SQLiteStore implements persistence using SQLite
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens or creates the database at dbPath and brings the schema up to date
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to migrate: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

// SchemaVersion returns the current schema version stored in the database
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate applies all migrations newer than the stored schema version
func (s *SQLiteStore) migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, len(migrations))
	}

	for idx := current; idx < len(migrations); idx++ {
		version := idx + 1
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, migrations[idx]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply schema version %d: %w", version, err)
		}
		// pragma doesn't accept bind parameters
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit schema version %d: %w", version, err)
		}
		log.Printf("[INFO] database schema upgraded to version %d", version)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqlLimit converts limit to the sqlite form, -1 means no limit
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func now() int64 { return time.Now().Unix() }
