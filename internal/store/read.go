package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/blobrelay/internal/record"
)

// ReadAll returns every record in ascending id order, inside a
// read-only transaction.
//
// Returns an empty slice (not nil) if the container holds no records.
func (s *Store) ReadAll(ctx context.Context) ([]record.Record, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("read all: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, value
		FROM DataStore
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	// Return empty slice instead of nil
	if records == nil {
		records = []record.Record{}
	}

	return records, nil
}

// MaxID returns the highest id in the container, or 0 when empty.
func (s *Store) MaxID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM DataStore`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("max id: %w", err)
	}
	return id, nil
}

// Count returns the number of records in the container.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM DataStore`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// scanRecord scans a row into a Record.
func scanRecord(rows *sql.Rows) (record.Record, error) {
	var rec record.Record
	var value string
	if err := rows.Scan(&rec.ID, &value); err != nil {
		return record.Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.Value = json.RawMessage(value)
	return rec, nil
}
