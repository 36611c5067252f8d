package trace

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
)

// gradeByKeyword is a minimal scenario whose grade checks the final
// assistant text for a keyword.
type gradeByKeyword struct {
	setupSeed int
}

func newGradeByKeyword() scenario.Scenario { return &gradeByKeyword{} }

func (s *gradeByKeyword) Config() models.ScenarioConfig {
	return models.ScenarioConfig{
		ID:           "test/keyword",
		Family:       models.FamilyConstraint,
		Name:         "Keyword",
		BudgetTokens: 1000,
		BudgetTurns:  5,
	}
}

func (s *gradeByKeyword) Setup(seed int) []models.Message {
	s.setupSeed = seed
	return []models.Message{{Role: models.RoleSystem, Content: "Say the magic word."}}
}

func (s *gradeByKeyword) Tools() []models.ToolSchema { return nil }

func (s *gradeByKeyword) HandleToolCall(call models.ToolCallRequest) models.ToolCallResult {
	return models.ToolCallResult{CallID: call.ID, Name: call.Name, Result: "ok"}
}

func (s *gradeByKeyword) CheckTermination([]models.Message, int, int) bool { return true }

func (s *gradeByKeyword) Grade(result *models.ScenarioResult) map[string]float64 {
	success := 0.0
	if strings.Contains(result.FinalAssistantText(), "xyzzy") {
		success = 1.0
	}
	return map[string]float64{"task_success": success, "seed_seen": float64(s.setupSeed)}
}

func testRegistry(t *testing.T) *scenario.Registry {
	t.Helper()
	reg, err := scenario.NewRegistry(map[string]scenario.Constructor{
		"test/keyword": newGradeByKeyword,
	})
	require.NoError(t, err)
	return reg
}

func writeReplayableTrace(t *testing.T, dir, name, scenarioID, finalText string, seed int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteMetadata(map[string]any{
		"scenario_id": scenarioID,
		"seed":        seed,
		"model":       "mock",
	}))
	require.NoError(t, w.WriteMessage(models.Message{Role: models.RoleSystem, Content: "Say the magic word."}, nil))
	require.NoError(t, w.WriteMessage(models.Message{Role: models.RoleUser, Content: "go"}, nil))
	require.NoError(t, w.WriteMessage(models.Message{Role: models.RoleAssistant, Content: finalText},
		&models.Usage{PromptTokens: 40, CompletionTokens: 10}))
	require.NoError(t, w.Close())
	return path
}

func TestReplaySingleTrace(t *testing.T) {
	dir := t.TempDir()
	path := writeReplayableTrace(t, dir, "t.jsonl", "test/keyword", "the word is xyzzy", 7)

	result, err := ReplaySingleTrace(path, testRegistry(t))
	require.NoError(t, err)
	require.Equal(t, "test/keyword", result.ScenarioID)
	require.Equal(t, 7, result.Seed)
	require.True(t, result.Success)
	require.Equal(t, 1.0, result.Metrics["task_success"])
	require.Equal(t, 7.0, result.Metrics["seed_seen"])
	require.Equal(t, 50, result.TotalTokens)
	require.Equal(t, 1, result.TotalTurns)
	require.Len(t, result.Messages, 3)
}

func TestReplaySingleTraceGradeIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeReplayableTrace(t, dir, "t.jsonl", "test/keyword", "no magic here", 1)

	reg := testRegistry(t)
	first, err := ReplaySingleTrace(path, reg)
	require.NoError(t, err)
	second, err := ReplaySingleTrace(path, reg)
	require.NoError(t, err)
	require.Equal(t, first.Metrics, second.Metrics)
	require.False(t, first.Success)
}

func TestReplaySingleTraceUnknownScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeReplayableTrace(t, dir, "t.jsonl", "gone/scenario", "text", 0)

	result, err := ReplaySingleTrace(path, testRegistry(t))
	require.NoError(t, err)
	require.Equal(t, "gone/scenario", result.ScenarioID)
	require.Empty(t, result.Metrics)
	require.False(t, result.Success)
}

func TestReplayRun(t *testing.T) {
	dir := t.TempDir()
	writeReplayableTrace(t, dir, "a_seed0.jsonl", "test/keyword", "xyzzy", 0)
	writeReplayableTrace(t, dir, "a_seed1.jsonl", "test/keyword", "nothing", 1)

	results, model, err := ReplayRun(dir, testRegistry(t))
	require.NoError(t, err)
	require.Equal(t, "mock", model)
	require.Len(t, results, 2)
	require.True(t, results[0].Success)
	require.False(t, results[1].Success)
}

func TestReplayRunEmptyDir(t *testing.T) {
	_, _, err := ReplayRun(t.TempDir(), testRegistry(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no trace files")
}

func TestReplayRunMissingDir(t *testing.T) {
	_, _, err := ReplayRun(filepath.Join(t.TempDir(), "absent"), testRegistry(t))
	require.Error(t, err)
}
