// Package store provides SQLite-backed durable storage for blobrelay records.
//
// The store holds a single append-only container, DataStore, whose rows
// are { id INTEGER PRIMARY KEY AUTOINCREMENT, value TEXT }. Values are
// opaque JSON text written and read back unchanged.
//
// # Schema Versioning
//
// The schema version lives in PRAGMA user_version:
//   - 0: fresh database, the container is created and the version set to 1
//   - 1: current schema, opened as is
//   - >1: written by a newer release, Open fails with ErrVersionConflict
//
// # Ordering
//
// All reads use ORDER BY id ASC. Keys come from a millisecond clock owned
// by the caller, or from AUTOINCREMENT when the caller passes id 0.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - one open connection: read-write transactions are serialised
package store
