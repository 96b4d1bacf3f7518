package record

// Schema and wire constants. Changing any of the first three requires a
// schema version bump and a migration, neither of which exists.
const (
	// DatabaseName names the logical database holding the record store.
	DatabaseName = "StreamlitDB"

	// StoreName names the record container (the SQLite table).
	StoreName = "DataStore"

	// SchemaVersion is the only schema version this module understands.
	SchemaVersion = 1

	// EventName is the name of the signal delivered to the host frame.
	EventName = "indexeddbData"

	// Version is the blobrelay release version.
	Version = "0.1.0"
)
