package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedRun executes a real mock batch and returns (runsDir, runID).
func completedRun(t *testing.T) (string, string) {
	t.Helper()
	runsDir := t.TempDir()

	cmd := newRunCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", writeRunConfig(t, runsDir)})
	require.NoError(t, cmd.Execute())

	entries, err := os.ReadDir(runsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return runsDir, entries[0].Name()
}

func TestGradeCommand(t *testing.T) {
	runsDir, runID := completedRun(t)

	cmd := newGradeCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--run", runID, "--runs-dir", runsDir})

	require.NoError(t, cmd.Execute())

	result := output.String()
	assert.Contains(t, result, "Re-graded 1 traces")
	assert.Contains(t, result, "Scorecard written:")
	assert.Contains(t, result, "=== Interpretation ===")
	assert.Contains(t, result, "[+] constraint/json_schema")

	_, err := os.Stat(filepath.Join(runsDir, runID, "scorecard.json"))
	assert.NoError(t, err)
}

func TestGradeCommandMissingRun(t *testing.T) {
	cmd := newGradeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--run", "run_does_not_exist", "--runs-dir", t.TempDir()})

	require.Error(t, cmd.Execute())
}

func TestGradeCommandRequiresRunFlag(t *testing.T) {
	cmd := newGradeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)

	require.Error(t, cmd.Execute())
}
