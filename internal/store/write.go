package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/blobrelay/internal/record"
)

// ErrDuplicateKey is returned when a record id is already taken.
var ErrDuplicateKey = errors.New("duplicate record key")

// Add inserts one record in its own read-write transaction and returns
// the record as stored. A zero ID lets AUTOINCREMENT assign the key.
//
// There is no ON CONFLICT clause: adding an existing key fails with
// ErrDuplicateKey, the same way an add on an occupied key fails in any
// keyed object store.
func (s *Store) Add(ctx context.Context, rec record.Record) (record.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("add record: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	query, args := `INSERT INTO DataStore (value) VALUES (?)`, []any{string(rec.Value)}
	if rec.ID != 0 {
		query = `INSERT INTO DataStore (id, value) VALUES (?, ?)`
		args = []any{rec.ID, string(rec.Value)}
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return record.Record{}, fmt.Errorf("add record: id %d: %w", rec.ID, ErrDuplicateKey)
		}
		return record.Record{}, fmt.Errorf("add record: insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return record.Record{}, fmt.Errorf("add record: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return record.Record{}, fmt.Errorf("add record: commit: %w", err)
	}

	return record.Record{ID: id, Value: rec.Value}, nil
}

// isPrimaryKeyViolation reports whether err is SQLite rejecting a
// duplicate primary key.
func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
