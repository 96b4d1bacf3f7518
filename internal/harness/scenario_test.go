package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: basic
description: "Store and fetch"
start_ms: 1000
steps:
  - action: store
    value: { name: widget, qty: 3 }
    expect: { outcome: stored }
  - action: tick
    advance_ms: 5
  - action: fetch_all
    expect: { outcome: ok, count: 1 }
assertions:
  - type: record_count
    count: 1
  - type: ids_ascending
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "basic", s.Name)
	assert.Equal(t, int64(1000), s.StartMillis)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, ActionStore, s.Steps[0].Action)
	assert.Equal(t, map[string]interface{}{"name": "widget", "qty": 3}, s.Steps[0].Value)
	assert.Equal(t, OutcomeStored, s.Steps[0].Expect.Outcome)
	assert.Equal(t, int64(5), s.Steps[1].AdvanceMillis)
	require.NotNil(t, s.Steps[2].Expect.Count)
	assert.Equal(t, 1, *s.Steps[2].Expect.Count)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, AssertIDsAscending, s.Assertions[1].Type)
}

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			_, err := LoadScenario(f)
			assert.NoError(t, err)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Has a typo"
steps:
  - action: fetch_all
assertion:
  - type: record_count
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing name",
			yaml: `
description: d
steps: [{ action: fetch_all }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: n
steps: [{ action: fetch_all }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "description is required",
		},
		{
			name: "no steps",
			yaml: `
name: n
description: d
assertions: [{ type: ids_ascending }]`,
			wantErr: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: `
name: n
description: d
steps: [{ action: fetch_all }]`,
			wantErr: "assertions list is required",
		},
		{
			name: "negative start",
			yaml: `
name: n
description: d
start_ms: -1
steps: [{ action: fetch_all }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "start_ms must be non-negative",
		},
		{
			name: "unknown action",
			yaml: `
name: n
description: d
steps: [{ action: delete }]
assertions: [{ type: ids_ascending }]`,
			wantErr: `steps[0]: unknown action "delete"`,
		},
		{
			name: "missing action",
			yaml: `
name: n
description: d
steps: [{ value: 1 }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "steps[0]: action is required",
		},
		{
			name: "tick without advance",
			yaml: `
name: n
description: d
steps: [{ action: tick }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "advance_ms must be positive",
		},
		{
			name: "relay with value",
			yaml: `
name: n
description: d
steps: [{ action: relay, value: 1 }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "relay takes no value",
		},
		{
			name: "expect without outcome",
			yaml: `
name: n
description: d
steps: [{ action: fetch_all, expect: { count: 1 } }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "steps[0].expect: outcome is required",
		},
		{
			name: "count on store",
			yaml: `
name: n
description: d
steps: [{ action: store, value: 1, expect: { outcome: stored, count: 1 } }]
assertions: [{ type: ids_ascending }]`,
			wantErr: "count only applies to fetch_all and relay",
		},
		{
			name: "unknown assertion",
			yaml: `
name: n
description: d
steps: [{ action: fetch_all }]
assertions: [{ type: final_state }]`,
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name: "values_order without values",
			yaml: `
name: n
description: d
steps: [{ action: fetch_all }]
assertions: [{ type: values_order }]`,
			wantErr: "values list is required",
		},
		{
			name: "negative count",
			yaml: `
name: n
description: d
steps: [{ action: fetch_all }]
assertions: [{ type: event_count, count: -1 }]`,
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_EmptyValuesOrderAllowed(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: n
description: d
steps: [{ action: fetch_all }]
assertions: [{ type: values_order, values: [] }]`))
	require.NoError(t, err)
	assert.NotNil(t, s.Assertions[0].Values)
	assert.Empty(t, s.Assertions[0].Values)
}
