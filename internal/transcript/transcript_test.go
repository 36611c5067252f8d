package transcript

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/trace"
)

func writeTrace(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := trace.NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteMetadata(map[string]any{
		"scenario_id": "tool_use/research_calculate",
		"seed":        3,
		"model":       "mock",
	}))
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleSystem, Content: "You are a research assistant.",
	}, nil))
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleUser, Content: "Find the population.",
	}, nil))
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleAssistant,
		ToolCalls: []models.ToolCallRequest{{
			ID: "c1", Name: "calculator",
			Arguments: map[string]any{"expression": "7600000000 / 116250"},
		}},
	}, &models.Usage{PromptTokens: 40, CompletionTokens: 10}))
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleTool, Name: "calculator", ToolCallID: "c1", Content: "65376.344086",
	}, nil))
	require.NoError(t, w.WriteMessage(models.Message{
		Role: models.RoleAssistant, Content: "The result is approximately 65376.34.",
	}, &models.Usage{PromptTokens: 50, CompletionTokens: 10}))
	require.NoError(t, w.WriteScore(map[string]float64{"task_success": 1.0, "efficiency": 0.8}))
	return path
}

func TestRender(t *testing.T) {
	out, err := Render(writeTrace(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "scenario_id: tool_use/research_calculate\n"), out)
	assert.Contains(t, out, "seed: 3")
	assert.Contains(t, out, "model: mock")
	assert.Contains(t, out, "total_tokens: 110")

	assert.Contains(t, out, "[system]\nYou are a research assistant.")
	assert.Contains(t, out, "[user]\nFind the population.")
	assert.Contains(t, out, `-> calculator({"expression":"7600000000 / 116250"})`)
	assert.Contains(t, out, "[tool calculator]\n65376.344086")
	assert.Contains(t, out, "--- Scores ---\nefficiency: 0.8000\ntask_success: 1.0000")

	// Conversation order survives rendering.
	assert.Less(t, strings.Index(out, "[system]"), strings.Index(out, "[user]"))
	assert.Less(t, strings.Index(out, "[user]"), strings.Index(out, "[tool calculator]"))
}

func TestRenderNoScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	w, err := trace.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteMessage(models.Message{Role: models.RoleUser, Content: "hi"}, nil))
	require.NoError(t, w.Close())

	out, err := Render(path)
	require.NoError(t, err)
	assert.NotContains(t, out, "--- Scores ---")
	assert.Contains(t, out, "[user]\nhi")
}

func TestRenderMissingFile(t *testing.T) {
	_, err := Render(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
}
