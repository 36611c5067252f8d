package tools

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

func TestRegistrySchemas(t *testing.T) {
	r := NewRegistry(NewSearch(""), NewCalculator(), NewFileStore())
	schemas := r.Schemas()
	require.Len(t, schemas, 3)
	require.Equal(t, "search", schemas[0].Name)
	require.Equal(t, "calculator", schemas[1].Name)
	require.Equal(t, "file_store", schemas[2].Name)
	for _, s := range schemas {
		require.NotEmpty(t, s.Description)
		require.Equal(t, "object", s.Parameters["type"])
	}
}

func TestRegistryHandleCall(t *testing.T) {
	r := NewRegistry(NewCalculator())
	res := r.HandleCall(models.ToolCallRequest{
		ID:        "call_1",
		Name:      "calculator",
		Arguments: map[string]any{"expression": "7600000000 / 116250"},
	})
	require.False(t, res.IsError)
	require.Equal(t, "call_1", res.CallID)
	require.Equal(t, "calculator", res.Name)
	require.Equal(t, "65376.344086", res.Result)
}

func TestRegistryHandleCallUnknownTool(t *testing.T) {
	r := NewRegistry(NewCalculator())
	res := r.HandleCall(models.ToolCallRequest{ID: "call_2", Name: "teleport"})
	require.True(t, res.IsError)
	require.Contains(t, res.Result, "unknown tool")
	require.Equal(t, "call_2", res.CallID)
}

func TestRegistryHandleCallExecutionError(t *testing.T) {
	// Execution failures stay in-band; no Go error escapes the registry.
	r := NewRegistry(NewCalculator())
	res := r.HandleCall(models.ToolCallRequest{
		ID:        "call_3",
		Name:      "calculator",
		Arguments: map[string]any{"expression": "1 / 0"},
	})
	require.True(t, res.IsError)
	require.Contains(t, res.Result, "Error:")
	require.Contains(t, res.Result, "division by zero")
}

func TestRegistryDuplicateRegistrationReplaces(t *testing.T) {
	r := NewRegistry(NewCalculator(), NewCalculator())
	require.Len(t, r.Schemas(), 1)
}
