package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/trace"
)

// writeJudgeFixtures builds a single-answer trace, a rubric the answer
// fully satisfies, and a config keeping every judge on its deterministic
// fallback. Returns the three paths.
func writeJudgeFixtures(t *testing.T) (tracePath, rubricPath, configPath string) {
	t.Helper()
	dir := t.TempDir()

	tracePath = filepath.Join(dir, "trace.jsonl")
	w, err := trace.NewWriter(tracePath)
	require.NoError(t, err)
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleUser, Content: "How should the service handle transient failures?",
	}, nil))
	require.NoError(t, w.WriteMessage(models.Message{
		Role:    models.RoleAssistant,
		Content: "The service retries with exponential backoff and keeps handlers idempotent.",
	}, &models.Usage{PromptTokens: 20, CompletionTokens: 15}))
	require.NoError(t, w.Close())

	rubricPath = filepath.Join(dir, "rubric.yaml")
	rubric := "criteria:\n  - retries\n  - idempotent\ntarget_keywords:\n  - backoff\n"
	require.NoError(t, os.WriteFile(rubricPath, []byte(rubric), 0o644))

	configPath = filepath.Join(dir, "config.yaml")
	cfg := "judges:\n  rubric_model: \"\"\n  embedding_model: \"\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	return tracePath, rubricPath, configPath
}

func TestJudgeCommandScoresTrace(t *testing.T) {
	tracePath, rubricPath, configPath := writeJudgeFixtures(t)

	var buf bytes.Buffer
	cmd := newJudgeCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{tracePath, "--rubric", rubricPath, "--config", configPath})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Ensemble score: 1.0000")
	assert.Contains(t, out, "Per-judge scores:")
	assert.Contains(t, out, "constraint")
	assert.Contains(t, out, "embedding")
	assert.Contains(t, out, "rubric")
}

func TestJudgeCommandNoAssistantMessage(t *testing.T) {
	tracePath, rubricPath, configPath := writeJudgeFixtures(t)

	empty := filepath.Join(filepath.Dir(tracePath), "empty.jsonl")
	w, err := trace.NewWriter(empty)
	require.NoError(t, err)
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleUser, Content: "Hello?",
	}, nil))
	require.NoError(t, w.Close())

	cmd := newJudgeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{empty, "--rubric", rubricPath, "--config", configPath})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no final assistant message")
}

func TestJudgeCommandMissingTrace(t *testing.T) {
	_, rubricPath, configPath := writeJudgeFixtures(t)

	cmd := newJudgeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.jsonl"), "--rubric", rubricPath, "--config", configPath})
	require.Error(t, cmd.Execute())
}
