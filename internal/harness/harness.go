package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/blobrelay/internal/bridge"
	"github.com/roach88/blobrelay/internal/clock"
	"github.com/roach88/blobrelay/internal/record"
	"github.com/roach88/blobrelay/internal/relay"
	"github.com/roach88/blobrelay/internal/store"
	"github.com/roach88/blobrelay/internal/testutil"
)

// ErrUnavailable is the open failure of a scenario marked unavailable.
var ErrUnavailable = errors.New("record store unavailable")

// Harness is the scenario execution engine.
// It drives one bridge with a manual wall clock and records every emit
// and acknowledgement.
type Harness struct {
	dbPath      string
	unavailable bool
	time        *testutil.ManualTime
	recorder    *relay.Recorder
	acks        []bridge.Ack
	handle      *bridge.Handle
	bridge      *bridge.Bridge
	logger      *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh SQLite file for isolation. A returned
// error means the harness itself failed; failed expectations are
// reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "blobrelay-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	start := scenario.StartMillis
	if start == 0 {
		start = DefaultStartMillis
	}

	h := &Harness{
		dbPath:      filepath.Join(dir, "scenario.db"),
		unavailable: scenario.Unavailable,
		time:        testutil.NewManualTime(start),
		recorder:    &relay.Recorder{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.connect()
	defer func() { h.handle.Close() }()

	result := NewResult()
	for i, step := range scenario.Steps {
		ev, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
		result.AddTrace(ev)
		checkExpect(i, step, ev, result)

		h.logger.Info("step completed", "step", i, "action", step.Action, "outcome", ev.Outcome)
	}

	if !h.unavailable {
		recs, err := h.bridge.FetchAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read final records: %w", err)
		}
		result.Records = recs
	}
	result.Events = h.recorder.Events()
	result.Acks = len(h.acks)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// connect builds a fresh handle and bridge over the scenario store.
// The key clock is rebuilt too, as after a process restart.
func (h *Harness) connect() {
	opener := bridge.PathOpener(h.dbPath)
	if h.unavailable {
		opener = func(context.Context) (*store.Store, error) {
			return nil, ErrUnavailable
		}
	}

	h.handle = bridge.NewHandle(opener,
		bridge.WithClock(clock.NewWithSource(h.time.Now)),
		bridge.WithHandleLogger(h.logger),
	)
	h.bridge = bridge.New(h.handle, h.recorder,
		bridge.WithLogger(h.logger),
		bridge.WithNotifier(bridge.NotifierFunc(func(_ context.Context, ack bridge.Ack) {
			h.acks = append(h.acks, ack)
		})),
	)
}

func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	ev := TraceEvent{Action: step.Action, Outcome: OutcomeOK}

	switch step.Action {
	case ActionStore:
		value, err := stepValue(step)
		if err != nil {
			return ev, err
		}
		before := len(h.acks)
		err = h.bridge.Store(ctx, value)
		switch {
		case errors.Is(err, record.ErrInvalidValue):
			ev.Outcome = OutcomeInvalid
			ev.Error = err.Error()
		case err != nil:
			ev.Outcome = OutcomeError
			ev.Error = err.Error()
		case len(h.acks) > before:
			ack := h.acks[len(h.acks)-1]
			ev.Outcome = OutcomeStored
			ev.Key = ack.Record.ID
			ev.Value = ack.Record.Value
		default:
			ev.Outcome = OutcomeSkipped
		}

	case ActionFetchAll:
		recs, err := h.bridge.FetchAll(ctx)
		if err != nil {
			ev.Outcome = OutcomeError
			ev.Error = err.Error()
			break
		}
		n := len(recs)
		ev.Count = &n

	case ActionRelay:
		before := h.recorder.Len()
		if err := h.bridge.Relay(ctx); err != nil {
			ev.Outcome = OutcomeError
			ev.Error = err.Error()
			break
		}
		events := h.recorder.Events()
		if len(events) != before+1 {
			return ev, fmt.Errorf("relay emitted %d events, expected 1", len(events)-before)
		}
		emitted := events[len(events)-1]
		n := emitted.Len()
		ev.Count = &n
		ev.Event = &emitted

	case ActionTick:
		h.time.Tick(time.Duration(step.AdvanceMillis) * time.Millisecond)

	case ActionReopen:
		if err := h.handle.Close(); err != nil {
			return ev, fmt.Errorf("close record store: %w", err)
		}
		h.connect()

	default:
		return ev, fmt.Errorf("unknown action %q", step.Action)
	}

	return ev, nil
}

// stepValue returns the JSON bytes a store step submits.
func stepValue(step Step) (json.RawMessage, error) {
	if step.Raw != "" {
		return json.RawMessage(step.Raw), nil
	}
	data, err := json.Marshal(step.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return data, nil
}

func checkExpect(index int, step Step, ev TraceEvent, result *Result) {
	if step.Expect == nil {
		return
	}
	if ev.Outcome != step.Expect.Outcome {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected outcome %s, got %s",
			index, step.Action, step.Expect.Outcome, ev.Outcome))
		return
	}
	if step.Expect.Count != nil {
		got := 0
		if ev.Count != nil {
			got = *ev.Count
		}
		if got != *step.Expect.Count {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %d records, got %d",
				index, step.Action, *step.Expect.Count, got))
		}
	}
}
