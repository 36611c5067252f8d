package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

func TestDefaultRegistry(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)
	require.Equal(t, []string{
		"classification/sentiment",
		"constraint/json_schema",
		"convergence/error_handling",
		"tool_use/research_calculate",
	}, registry.IDs())

	families := map[models.TaskFamily]bool{}
	for _, info := range registry.List("") {
		families[info.Family] = true
	}
	require.Len(t, families, 4)
}

func TestScenarioConfigsHaveBudgets(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)
	for _, id := range registry.IDs() {
		s, err := registry.Get(id)
		require.NoError(t, err)
		cfg := s.Config()
		require.Equal(t, id, cfg.ID)
		require.Positive(t, cfg.BudgetTokens, id)
		require.Positive(t, cfg.BudgetTurns, id)
		require.NotEmpty(t, cfg.Name, id)
	}
}

func TestSetupReturnsSystemMessage(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)
	for _, id := range registry.IDs() {
		s, err := registry.Get(id)
		require.NoError(t, err)
		msgs := s.Setup(0)
		require.NotEmpty(t, msgs, id)
		require.Equal(t, models.RoleSystem, msgs[0].Role, id)
	}
}
