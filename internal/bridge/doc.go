// Package bridge implements the three blobrelay operations: Store, FetchAll
// and Relay.
//
// A Bridge is built from an explicit Handle (the lazily opened record
// store), an explicit relay.Emitter (the host frame) and a Notifier (the
// user-visible write acknowledgment). Nothing is global.
//
// # Error Policy
//
//   - Store: a store-open failure is logged and swallowed (Store returns
//     nil); a failed write transaction is returned as an error
//   - FetchAll: open and read failures are returned
//   - Relay: FetchAll failures are returned and nothing is emitted
//
// No operation retries.
//
// # Handle Lifecycle
//
//	UNOPENED -> OPENING -> SCHEMA_CHECK -> OPEN -> CLOSED
//
// A failed open falls back to UNOPENED so the next operation retries it.
// The bridge never closes the handle; its owner does, at teardown.
package bridge
