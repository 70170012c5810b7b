package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeanBeanBEER-WARE/interact/internal/journal"
)

func TestSim_RunsScenario(t *testing.T) {
	out, _, err := executeCommand(t, "sim", "testdata/hover-scenario.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "scenario hover-highlight (session sim-session-0001)")
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "remove")
	assert.Contains(t, out, "✓ 2 assertion(s) passed")
}

func TestSim_JSONOutput(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "sim", "testdata/hover-scenario.yaml")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, jsonErr := json.Marshal(resp.Data)
	require.NoError(t, jsonErr)
	var result SimResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "hover-highlight", result.Scenario)
	assert.Equal(t, "sim-session-0001", result.Session)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "add", result.Trace[0].Action)
	assert.Equal(t, "remove", result.Trace[1].Action)
	assert.Empty(t, result.Failures)
}

func TestSim_JournalRecordsTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	_, _, err := executeCommand(t, "sim", "testdata/hover-scenario.yaml", "--journal", path)
	require.NoError(t, err)

	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Entries(context.Background(), "sim-session-0001")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, "add", entries[0].Action)
	assert.Equal(t, []string{"lit"}, entries[0].Labels)
	assert.Equal(t, "remove", entries[1].Action)
}

func TestSim_FailedAssertionExitsNonZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failing.yaml")
	content := `name: failing
description: "Assertion contradicts the rule"
document:
  viewport: { width: 800, height: 600 }
  nodes:
    - id: btn
rules:
  - trigger: activate
    triggerSelector: "#btn"
    addLabels: [open]
steps:
  - activate: "#btn"
  - frame: true
assertions:
  - type: labels
    element: "#btn"
    missing: [open]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, _, err := executeCommand(t, "sim", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "assertion(s) failed")
}

func TestSim_MissingScenarioIsCommandError(t *testing.T) {
	_, _, err := executeCommand(t, "sim", "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
