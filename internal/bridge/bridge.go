package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/blobrelay/internal/metrics"
	"github.com/roach88/blobrelay/internal/record"
	"github.com/roach88/blobrelay/internal/relay"
)

// ErrNoEmitter is returned by Relay when the bridge has no emitter.
var ErrNoEmitter = errors.New("no emitter configured")

// Bridge stores payloads, reads them back and relays them to the host.
type Bridge struct {
	handle   *Handle
	emitter  relay.Emitter
	notifier Notifier
	logger   *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithNotifier sets the write acknowledgment sink. Defaults to LogNotifier.
func WithNotifier(n Notifier) Option {
	return func(b *Bridge) { b.notifier = n }
}

// WithLogger sets the bridge's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// New creates a bridge over handle that relays to emitter.
func New(handle *Handle, emitter relay.Emitter, opts ...Option) *Bridge {
	b := &Bridge{
		handle:  handle,
		emitter: emitter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.notifier == nil {
		b.notifier = LogNotifier{Logger: b.logger}
	}
	return b
}

// Handle returns the bridge's store handle.
func (b *Bridge) Handle() *Handle {
	return b.handle
}

// Store inserts {id: now, value} in a read-write transaction and notifies
// on commit.
//
// A store-open failure is logged and Store returns nil. A failed insert
// or commit is returned. value must be a JSON document.
func (b *Bridge) Store(ctx context.Context, value json.RawMessage) error {
	if err := record.ValidateValue(value); err != nil {
		return fmt.Errorf("store record: %w", err)
	}

	st, err := b.handle.Open(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "error opening record store",
			"db", record.DatabaseName,
			"error", err,
		)
		return nil
	}

	rec, err := st.Add(ctx, record.Record{ID: b.handle.NextKey(), Value: value})
	if err != nil {
		metrics.WriteErrors.Inc()
		return fmt.Errorf("store record: %w", err)
	}
	metrics.RecordsStored.Inc()

	b.logger.DebugContext(ctx, "record stored", "id", rec.ID, "bytes", len(rec.Value))
	b.notifier.Notify(ctx, Ack{Record: rec, Message: AckMessage})
	return nil
}

// FetchAll returns every record in ascending id order.
// A new store yields an empty slice. Open and read failures are returned.
func (b *Bridge) FetchAll(ctx context.Context) ([]record.Record, error) {
	start := time.Now()

	st, err := b.handle.Open(ctx)
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("fetch all: %w", err)
	}

	recs, err := st.ReadAll(ctx)
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("fetch all: %w", err)
	}

	metrics.Fetches.Inc()
	metrics.FetchDuration.UpdateDuration(start)
	return recs, nil
}

// Relay fetches every record and emits exactly one event carrying them.
// If the fetch fails nothing is emitted and the error is returned.
func (b *Bridge) Relay(ctx context.Context) error {
	if b.emitter == nil {
		return fmt.Errorf("relay: %w", ErrNoEmitter)
	}

	recs, err := b.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}

	ev := record.NewEvent(recs)
	if err := b.emitter.Emit(ctx, ev); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	metrics.RelaysEmitted.Inc()

	b.logger.DebugContext(ctx, "records relayed", "event", ev.Type, "records", ev.Len())
	return nil
}
