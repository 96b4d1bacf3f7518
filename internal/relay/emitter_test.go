package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blobrelay/internal/record"
)

func testEvent(values ...string) record.Event {
	recs := make([]record.Record, len(values))
	for i, v := range values {
		recs[i] = record.Record{ID: int64(i + 1), Value: record.StringValue(v)}
	}
	return record.NewEvent(recs)
}

func TestWriterEmitter_OneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	e := NewWriterEmitter(&buf)

	require.NoError(t, e.Emit(context.Background(), testEvent("hello")))
	require.NoError(t, e.Emit(context.Background(), testEvent()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.JSONEq(t, `{"type":"indexeddbData","detail":[{"id":1,"value":"hello"}]}`, lines[0])
	assert.JSONEq(t, `{"type":"indexeddbData","detail":[]}`, lines[1])
}

func TestWriterEmitter_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	e := NewWriterEmitter(&buf)

	ev := record.NewEvent([]record.Record{{ID: 1, Value: json.RawMessage(`"<b>&</b>"`)}})
	require.NoError(t, e.Emit(context.Background(), ev))

	assert.Contains(t, buf.String(), `"<b>&</b>"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestWriterEmitter_WriteError(t *testing.T) {
	e := NewWriterEmitter(failingWriter{})

	err := e.Emit(context.Background(), testEvent("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe closed")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Emit(context.Background(), testEvent("a")))
	require.NoError(t, r.Emit(context.Background(), testEvent("a", "b")))

	assert.Equal(t, 2, r.Len())
	events := r.Events()
	assert.Equal(t, 1, events[0].Len())
	assert.Equal(t, 2, events[1].Len())
}
