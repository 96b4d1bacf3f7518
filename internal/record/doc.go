// Package record defines the data types shared by every blobrelay package.
//
// This package contains type definitions and constants only. All other
// internal packages import record; record imports nothing internal.
//
// Key design constraints:
//   - Record.Value is opaque JSON and is never rewritten
//   - Record.ID is the primary key and the only ordering
//   - Event.Detail is always a JSON array, never null
//   - All JSON tags use snake_case
package record
