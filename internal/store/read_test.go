package store

import (
	"context"
	"testing"
)

func TestReadAll_EmptyStore(t *testing.T) {
	s := createTestStore(t)

	recs, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if recs == nil {
		t.Error("ReadAll() returned nil, want empty slice")
	}
	if len(recs) != 0 {
		t.Errorf("len = %d, want 0", len(recs))
	}
}

func TestReadAll_AscendingIDOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Insert out of key order
	for _, rec := range []struct {
		id    int64
		value string
	}{
		{300, "c"},
		{100, "a"},
		{200, "b"},
	} {
		if _, err := s.Add(ctx, createTestRecord(rec.id, rec.value)); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}

	recs, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}

	wantIDs := []int64{100, 200, 300}
	wantValues := []string{`"a"`, `"b"`, `"c"`}
	for i := range recs {
		if recs[i].ID != wantIDs[i] {
			t.Errorf("recs[%d].ID = %d, want %d", i, recs[i].ID, wantIDs[i])
		}
		if string(recs[i].Value) != wantValues[i] {
			t.Errorf("recs[%d].Value = %s, want %s", i, recs[i].Value, wantValues[i])
		}
	}
}

func TestReadAll_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ReadAll(ctx); err == nil {
		t.Error("expected error for cancelled context, got nil")
	}
}

func TestReadAll_ClosedStore(t *testing.T) {
	s := createTestStore(t)
	s.Close()

	if _, err := s.ReadAll(context.Background()); err == nil {
		t.Error("expected error reading from closed store, got nil")
	}
}

func TestMaxID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	got, err := s.MaxID(ctx)
	if err != nil {
		t.Fatalf("MaxID() failed: %v", err)
	}
	if got != 0 {
		t.Errorf("MaxID() on empty store = %d, want 0", got)
	}

	for _, id := range []int64{10, 30, 20} {
		if _, err := s.Add(ctx, createTestRecord(id, "x")); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}

	got, err = s.MaxID(ctx)
	if err != nil {
		t.Fatalf("MaxID() failed: %v", err)
	}
	if got != 30 {
		t.Errorf("MaxID() = %d, want 30", got)
	}
}

func TestCount(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		if _, err := s.Add(ctx, createTestRecord(i, "x")); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}
}
