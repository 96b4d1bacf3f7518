package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: store_twice
description: "Two stores come back in order"
steps:
  - action: store
    value: a
    expect: { outcome: stored }
  - action: store
    value: b
  - action: relay
    expect: { outcome: ok, count: 2 }
assertions:
  - type: record_count
    count: 2
  - type: values_order
    values: [a, b]
`

const failingScenario = `name: wrong_count
description: "Expects a record that is never stored"
steps:
  - action: fetch_all
assertions:
  - type: record_count
    count: 1
`

func newTestCmd(format string, args ...string) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := newTestCmd("text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := newTestCmd("text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	buf, err := newTestCmd("text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	buf, err := newTestCmd("json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "store_twice.yaml"), passingScenario)

	buf, err := newTestCmd("text", dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ store_twice")
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wrong_count.yaml"), failingScenario)

	buf, err := newTestCmd("text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ wrong_count")
	assert.Contains(t, buf.String(), "record_count")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wrong_count.yaml"), failingScenario)
	writeFile(t, filepath.Join(dir, "store_twice.yaml"), passingScenario)

	buf, err := newTestCmd("json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 1, response.Data.Passed)
	assert.Equal(t, 1, response.Data.Failed)
	require.NotNil(t, response.Error)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.yaml"), "name: broken\n")

	buf, err := newTestCmd("text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ broken.yaml")
	assert.Contains(t, buf.String(), "Load error")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	scenarioFile := filepath.Join(dir, "store_twice.yaml")
	writeFile(t, scenarioFile, passingScenario)

	buf, err := newTestCmd("text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "golden updated")

	golden, err := os.ReadFile(goldenFilePath(scenarioFile))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"store_twice"`)

	buf, err = newTestCmd("text", dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ store_twice")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	scenarioFile := filepath.Join(dir, "store_twice.yaml")
	writeFile(t, scenarioFile, passingScenario)
	writeFile(t, goldenFilePath(scenarioFile), `{"scenario_name":"store_twice","trace":[],"records":[]}`)

	buf, err := newTestCmd("text", dir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Golden file mismatch")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "store_twice.yaml"), passingScenario)
	writeFile(t, filepath.Join(dir, "wrong_count.yaml"), failingScenario)

	buf, err := newTestCmd("text", dir, "--filter", "store_*")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestHelpText(t *testing.T) {
	buf, err := newTestCmd("text", "--help")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "scenarios")
	assert.Contains(t, output, "--update")
	assert.Contains(t, output, "--filter")
	assert.Contains(t, output, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "test1.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "test2.yml"), "")
	writeFile(t, filepath.Join(tmpDir, "ignore.txt"), "")

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "relay-test.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "relay-empty.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "store-test.yaml"), "")

	files, err := findScenarioFiles(tmpDir, "relay-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "relay-")
	}
}

func TestFindScenarioFilesInvalidFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.yaml"), "")

	_, err := findScenarioFiles(tmpDir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "root.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "subdir", "sub.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, "golden", "skipped.yaml"), "")

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		result := goldenFilePath(tc.input)
		assert.Equal(t, tc.expected, result)
	}
}
