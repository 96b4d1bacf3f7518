package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/roach88/blobrelay/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// ErrVersionConflict is returned when the database carries a schema
// version newer than record.SchemaVersion.
var ErrVersionConflict = errors.New("schema version conflict")

// Store provides durable storage for blobrelay records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db      *sql.DB
	path    string
	created bool
}

// Open creates or opens a SQLite database at the given path.
// See OpenContext.
func Open(path string) (*Store, error) {
	return OpenContext(context.Background(), path)
}

// OpenContext creates or opens a SQLite database at the given path.
// Applies required pragmas and creates the record container on first use.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenContext(ctx context.Context, path string) (*Store, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	created, err := applySchema(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, path: path, created: created}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Created reports whether this open created the record container.
func (s *Store) Created() bool {
	return s.created
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema checks user_version and creates the container when the
// database is fresh. Returns true if the container was created.
func applySchema(ctx context.Context, db *sql.DB) (bool, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("get user_version: %w", err)
	}

	switch {
	case version > record.SchemaVersion:
		return false, fmt.Errorf("%w: database is at version %d, expected %d",
			ErrVersionConflict, version, record.SchemaVersion)
	case version == record.SchemaVersion:
		return false, nil
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return false, fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", record.SchemaVersion)); err != nil {
		return false, fmt.Errorf("set user_version: %w", err)
	}

	return true, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
