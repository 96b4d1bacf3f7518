package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/roach88/blobrelay/internal/record"
)

// Emitter hands an event to the host frame.
type Emitter interface {
	Emit(ctx context.Context, ev record.Event) error
}

// WriterEmitter writes each event as one JSON line.
type WriterEmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterEmitter creates an emitter writing JSON lines to w.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{w: w}
}

// Emit encodes ev and writes it followed by a newline.
func (e *WriterEmitter) Emit(_ context.Context, ev record.Event) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // payloads are relayed as written
	if err := enc.Encode(ev); err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", ev.Type, err)
	}
	return nil
}

// Recorder keeps every emitted event in memory.
// Used by the scenario harness and tests to observe relays.
type Recorder struct {
	mu     sync.Mutex
	events []record.Event
}

// Emit appends ev.
func (r *Recorder) Emit(_ context.Context, ev record.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events in emit order.
func (r *Recorder) Events() []record.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]record.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
