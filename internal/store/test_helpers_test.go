package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/roach88/blobrelay/internal/record"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// readOnly reads the container and fails unless it holds exactly one record.
func readOnly(t *testing.T, s *Store) record.Record {
	t.Helper()
	recs, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("ReadAll() returned %d records, want 1", len(recs))
	}
	return recs[0]
}

// createTestRecord creates a record with a JSON string payload.
func createTestRecord(id int64, value string) record.Record {
	return record.Record{ID: id, Value: record.StringValue(value)}
}

// rawJSON is a shorthand for raw JSON test payloads.
func rawJSON(s string) json.RawMessage {
	return json.RawMessage(s)
}
