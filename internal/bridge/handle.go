package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/blobrelay/internal/clock"
	"github.com/roach88/blobrelay/internal/metrics"
	"github.com/roach88/blobrelay/internal/record"
	"github.com/roach88/blobrelay/internal/store"
)

// ErrHandleClosed is returned by Open after Close.
var ErrHandleClosed = errors.New("record store handle closed")

// State is the lifecycle state of a Handle.
type State int

const (
	StateUnopened State = iota
	StateOpening
	StateSchemaCheck
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "UNOPENED"
	case StateOpening:
		return "OPENING"
	case StateSchemaCheck:
		return "SCHEMA_CHECK"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Opener opens the underlying record store.
type Opener func(ctx context.Context) (*store.Store, error)

// PathOpener opens the SQLite store at path.
func PathOpener(path string) Opener {
	return func(ctx context.Context) (*store.Store, error) {
		return store.OpenContext(ctx, path)
	}
}

// Handle is the process-wide connection to the record store.
// It opens lazily on first use and stays open until Close.
//
// The handle also owns the key clock: after the first successful open
// the clock is advanced past the store's highest key, so keys keep
// increasing across process restarts.
type Handle struct {
	mu     sync.Mutex
	opener Opener
	st     *store.Store
	state  State
	clock  *clock.Clock
	logger *slog.Logger
}

// HandleOption configures a Handle.
type HandleOption func(*Handle)

// WithClock sets the key clock. Defaults to clock.New().
func WithClock(c *clock.Clock) HandleOption {
	return func(h *Handle) { h.clock = c }
}

// WithHandleLogger sets the handle's logger. Defaults to slog.Default().
func WithHandleLogger(l *slog.Logger) HandleOption {
	return func(h *Handle) { h.logger = l }
}

// NewHandle creates an unopened handle.
func NewHandle(opener Opener, opts ...HandleOption) *Handle {
	h := &Handle{
		opener: opener,
		state:  StateUnopened,
		clock:  clock.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open returns the open store, opening it on first call.
// Concurrent callers wait for a single open.
func (h *Handle) Open(ctx context.Context) (*store.Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateOpen:
		return h.st, nil
	case StateClosed:
		return nil, ErrHandleClosed
	}

	h.state = StateOpening
	st, err := h.opener(ctx)
	if err != nil {
		h.state = StateUnopened
		metrics.OpenErrors.Inc()
		return nil, fmt.Errorf("open %s: %w", record.DatabaseName, err)
	}

	h.state = StateSchemaCheck
	maxID, err := st.MaxID(ctx)
	if err != nil {
		st.Close()
		h.state = StateUnopened
		metrics.OpenErrors.Inc()
		return nil, fmt.Errorf("open %s: %w", record.DatabaseName, err)
	}
	h.clock.Advance(maxID)

	count, err := st.Count(ctx)
	if err != nil {
		st.Close()
		h.state = StateUnopened
		metrics.OpenErrors.Inc()
		return nil, fmt.Errorf("open %s: %w", record.DatabaseName, err)
	}
	h.logger.Debug("record store opened",
		"path", st.Path(),
		"records", count,
		"max_id", maxID,
	)

	if st.Created() {
		h.logger.Info("record store created",
			"db", record.DatabaseName,
			"store", record.StoreName,
			"version", record.SchemaVersion,
		)
	}

	h.st = st
	h.state = StateOpen
	return st, nil
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// NextKey issues the next record key.
func (h *Handle) NextKey() int64 {
	return h.clock.Next()
}

// Close closes the store if open. Later Opens fail with ErrHandleClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = StateClosed
	if h.st == nil {
		return nil
	}
	err := h.st.Close()
	h.st = nil
	return err
}
