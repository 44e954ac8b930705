// Package sqlite provides SQLite-based storage implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Storage implements the storage.Storage interface using SQLite
type Storage struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// New creates a new SQLite storage instance
func New(dbPath string) (*Storage, error) {
	// _time_format keeps timestamp columns in a fixed, sqlite-comparable
	// text form; every bind site additionally normalizes to UTC so range
	// comparisons in SQL are comparisons of instants, not of offset text.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	storage := &Storage{db: db}

	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return storage, nil
}

// createSchema creates the database schema
func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS api_keys (
		id            TEXT PRIMARY KEY,
		owner_id      TEXT NOT NULL,
		label         TEXT NOT NULL DEFAULT '',
		key_hash      TEXT NOT NULL UNIQUE,
		secret_hash   TEXT NOT NULL DEFAULT '',
		last4         TEXT NOT NULL,
		type          TEXT NOT NULL DEFAULT 'test',
		status        TEXT NOT NULL DEFAULT 'active',
		alias_email   TEXT NOT NULL DEFAULT '',
		request_count INTEGER DEFAULT 0,
		last_used_at  DATETIME,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		expires_at    DATETIME,
		revoked_at    DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_api_keys_owner ON api_keys(owner_id);
	CREATE INDEX IF NOT EXISTS idx_api_keys_hash ON api_keys(key_hash);
	CREATE INDEX IF NOT EXISTS idx_api_keys_status ON api_keys(status);

	CREATE TABLE IF NOT EXISTS usage_daily (
		date          TEXT NOT NULL,
		owner_id      TEXT NOT NULL,
		request_count INTEGER DEFAULT 0,
		error_count   INTEGER DEFAULT 0,
		PRIMARY KEY (date, owner_id)
	);

	CREATE INDEX IF NOT EXISTS idx_usage_date ON usage_daily(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
