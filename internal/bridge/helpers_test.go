package bridge

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/roach88/blobrelay/internal/clock"
	"github.com/roach88/blobrelay/internal/relay"
	"github.com/roach88/blobrelay/internal/testutil"
)

// startMillis is the manual clock origin used by bridge tests.
const startMillis = 1_700_000_000_000

// testBridge bundles a bridge with the fakes tests inspect.
type testBridge struct {
	*Bridge
	recorder *relay.Recorder
	acks     *ackRecorder
	time     *testutil.ManualTime
	logs     *bytes.Buffer
}

// ackRecorder keeps every acknowledgment; safe for concurrent writers.
type ackRecorder struct {
	mu   sync.Mutex
	acks []Ack
}

func (r *ackRecorder) Notify(_ context.Context, ack Ack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, ack)
}

// All returns a copy of the recorded acks in notify order.
func (r *ackRecorder) All() []Ack {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Ack, len(r.acks))
	copy(out, r.acks)
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBridge creates a bridge over a fresh temp-dir store with a
// manual clock, a recording emitter and a recording notifier.
func newTestBridge(t *testing.T) *testBridge {
	t.Helper()
	return newTestBridgeWithOpener(t, PathOpener(filepath.Join(t.TempDir(), "bridge.db")))
}

func newTestBridgeWithOpener(t *testing.T, opener Opener) *testBridge {
	t.Helper()

	mt := testutil.NewManualTime(startMillis)
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	h := NewHandle(opener,
		WithClock(clock.NewWithSource(mt.Now)),
		WithHandleLogger(quietLogger()),
	)
	t.Cleanup(func() { h.Close() })

	rec := &relay.Recorder{}
	acks := &ackRecorder{}
	b := New(h, rec, WithLogger(logger), WithNotifier(acks))

	return &testBridge{Bridge: b, recorder: rec, acks: acks, time: mt, logs: logs}
}
