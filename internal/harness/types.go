package harness

import (
	"encoding/json"

	"github.com/roach88/blobrelay/internal/record"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int             `json:"seq"`
	Action  string          `json:"action"`
	Outcome string          `json:"outcome"`
	Key     int64           `json:"key,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Count   *int            `json:"count,omitempty"`
	Event   *record.Event   `json:"event,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the final store contents in key order.
	Records []record.Record `json:"records"`

	// Events is every event the relay emitted.
	Events []record.Event `json:"-"`

	// Acks is every store acknowledgement delivered.
	Acks int `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Records: []record.Record{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends ev with the next sequence number.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
