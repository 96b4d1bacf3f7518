package record

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidValue is returned when a payload is not a JSON document.
var ErrInvalidValue = errors.New("value is not valid JSON")

// Record is the unit of persisted data.
type Record struct {
	// ID is the primary key. Zero means "let the store assign one".
	ID int64 `json:"id"`

	// Value is the caller's payload, stored and returned byte-for-byte.
	Value json.RawMessage `json:"value"`
}

// Event is the signal relayed to the host frame.
type Event struct {
	Type   string   `json:"type"`
	Detail []Record `json:"detail"`
}

// NewEvent builds the relay event for records.
// A nil slice becomes an empty one so Detail always encodes as an array.
func NewEvent(records []Record) Event {
	if records == nil {
		records = []Record{}
	}
	return Event{Type: EventName, Detail: records}
}

// Len returns the number of records carried by the event.
func (e Event) Len() int {
	return len(e.Detail)
}

// ValidateValue checks that v is a single well-formed JSON document.
func ValidateValue(v []byte) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidValue)
	}
	if !json.Valid(v) {
		return fmt.Errorf("%w: %.64q", ErrInvalidValue, v)
	}
	return nil
}

// StringValue encodes s as a JSON string payload.
func StringValue(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}
