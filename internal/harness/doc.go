// Package harness runs record-store scenarios against a real bridge.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	start_ms: 1700000000000
//	steps:
//	  - action: store
//	    value: { ticker: ETH-USD, price: 3120 }
//	    expect: { outcome: stored }
//	  - action: store
//	    raw: '"plain text"'
//	  - action: tick
//	    advance_ms: 250
//	  - action: relay
//	    expect: { outcome: ok, count: 2 }
//	assertions:
//	  - type: record_count
//	    count: 2
//	  - type: values_order
//	    values: [{ ticker: ETH-USD, price: 3120 }, "plain text"]
//
// # Step Actions
//
//   - store: Store the step's value (or raw JSON text)
//   - fetch_all: Read every record
//   - relay: Read every record and emit one event
//   - tick: Advance the wall clock by advance_ms
//   - reopen: Close the store and open it again through a fresh handle
//
// # Assertion Types
//
//   - record_count: The store holds exactly count records at the end
//   - values_order: Final values equal values, in key order
//   - ids_ascending: Final keys are strictly increasing
//   - event_count: Exactly count events were emitted
//   - ack_count: Exactly count store acknowledgements were delivered
//
// # Deterministic Testing
//
// Each scenario runs in a fresh SQLite file under a temporary directory,
// with a manual wall clock starting at start_ms. Keys therefore come out
// the same on every run, which keeps golden traces stable.
package harness
