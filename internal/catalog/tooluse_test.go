package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

func TestToolUsePolicy(t *testing.T) {
	s := NewToolUse()
	policy := s.ScriptedPolicy()

	msg, ok := policy.NextMessage(nil, 0, s)
	require.True(t, ok)
	require.Contains(t, msg, "population of Springfield")
	require.Contains(t, msg, "gdp_per_capita")

	// Assistant still mid tool-calling: empty continuation turn.
	working := []models.Message{
		{Role: models.RoleAssistant, ToolCalls: []models.ToolCallRequest{{ID: "1", Name: "search"}}},
		{Role: models.RoleTool, Content: "[1] Springfield Demographics"},
	}
	msg, ok = policy.NextMessage(working, 1, s)
	require.True(t, ok)
	require.Empty(t, msg)

	// A plain text answer with a stop keyword ends the run.
	done := append(working, models.Message{
		Role:    models.RoleAssistant,
		Content: "The GDP per capita is approximately 65376.34 dollars.",
	})
	_, ok = policy.NextMessage(done, 2, s)
	require.False(t, ok)
}

func TestToolUseSetupResetsState(t *testing.T) {
	s := NewToolUse()
	s.HandleToolCall(models.ToolCallRequest{
		ID:        "1",
		Name:      "file_store",
		Arguments: map[string]any{"action": "write", "key": "x", "value": "1"},
	})
	require.Len(t, s.callsMade, 1)

	messages := s.Setup(0)
	require.Len(t, messages, 1)
	require.Equal(t, models.RoleSystem, messages[0].Role)
	require.Empty(t, s.callsMade)

	res := s.HandleToolCall(models.ToolCallRequest{
		ID:        "2",
		Name:      "file_store",
		Arguments: map[string]any{"action": "read", "key": "x"},
	})
	require.True(t, res.IsError)
}

func TestToolUseHandleToolCallRecords(t *testing.T) {
	s := NewToolUse()
	s.Setup(0)

	res := s.HandleToolCall(models.ToolCallRequest{
		ID:        "c1",
		Name:      "calculator",
		Arguments: map[string]any{"expression": "7600000000 / 116250"},
	})
	require.False(t, res.IsError)
	require.Equal(t, "65376.344086", res.Result)
	require.Len(t, s.callsMade, 1)
	require.Equal(t, "calculator", s.callsMade[0].Name)
}

func TestToolUseTermination(t *testing.T) {
	s := NewToolUse()
	s.Setup(0)

	finalText := []models.Message{{Role: models.RoleAssistant, Content: "done"}}
	require.False(t, s.CheckTermination(finalText, 1, 0), "needs at least two tool calls")

	s.HandleToolCall(models.ToolCallRequest{ID: "1", Name: "search", Arguments: map[string]any{"query": "population"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "2", Name: "calculator", Arguments: map[string]any{"expression": "1+1"}})

	pending := []models.Message{{
		Role:      models.RoleAssistant,
		ToolCalls: []models.ToolCallRequest{{ID: "3", Name: "file_store"}},
	}}
	require.False(t, s.CheckTermination(pending, 2, 0))
	require.True(t, s.CheckTermination(finalText, 3, 0))
}

func TestToolUseGradeSuccess(t *testing.T) {
	s := NewToolUse()
	s.Setup(0)
	s.HandleToolCall(models.ToolCallRequest{ID: "1", Name: "search", Arguments: map[string]any{"query": "Springfield population"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "2", Name: "calculator", Arguments: map[string]any{"expression": "7600000000 / 116250"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "3", Name: "file_store", Arguments: map[string]any{"action": "write", "key": "gdp_per_capita", "value": "65376.34"}})

	result := &models.ScenarioResult{
		Messages: []models.Message{
			{Role: models.RoleAssistant, Content: "The GDP per capita is approximately 65,376.34 dollars."},
		},
		TotalTokens: 600,
	}

	metrics := s.Grade(result)
	require.Equal(t, 1.0, metrics["task_success"])
	require.Equal(t, 1.0, metrics["answer_accuracy"])
	require.InDelta(t, 1.0, metrics["tool_call_correctness"], 1e-9)
	require.Equal(t, 3.0, metrics["tools_used"])
	require.Equal(t, 3.0, metrics["total_tool_calls"])
	require.Equal(t, 0.0, metrics["recovery_rate"])
	require.InDelta(t, 0.8, metrics["efficiency"], 1e-9)
}

func TestToolUseGradeWrongAnswer(t *testing.T) {
	s := NewToolUse()
	s.Setup(0)
	s.HandleToolCall(models.ToolCallRequest{ID: "1", Name: "search", Arguments: map[string]any{"query": "population"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "2", Name: "calculator", Arguments: map[string]any{"expression": "1+1"}})

	metrics := s.Grade(&models.ScenarioResult{
		Messages: []models.Message{
			{Role: models.RoleAssistant, Content: "The answer is 42."},
		},
	})
	require.Equal(t, 0.0, metrics["task_success"])
	require.Equal(t, 0.0, metrics["answer_accuracy"])
	require.InDelta(t, 2.0/3.0, metrics["tool_call_correctness"], 1e-9)
}

func TestToolUseGradeRecovery(t *testing.T) {
	s := NewToolUse()
	s.Setup(0)
	s.HandleToolCall(models.ToolCallRequest{ID: "1", Name: "search", Arguments: map[string]any{"query": "population"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "2", Name: "calculator", Arguments: map[string]any{"expression": "1/0"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "3", Name: "calculator", Arguments: map[string]any{"expression": "7600000000 / 116250"}})
	s.HandleToolCall(models.ToolCallRequest{ID: "4", Name: "file_store", Arguments: map[string]any{"action": "write", "key": "gdp_per_capita", "value": "65376.34"}})

	metrics := s.Grade(&models.ScenarioResult{
		Messages: []models.Message{
			{Role: models.RoleTool, Content: "Error: division by zero"},
			{Role: models.RoleAssistant, Content: "After fixing the expression, the result is approximately 65376.34."},
		},
	})
	require.Equal(t, 1.0, metrics["recovery_rate"])
	require.Equal(t, 1.0, metrics["task_success"])
	require.Equal(t, 4.0, metrics["total_tool_calls"])
}
