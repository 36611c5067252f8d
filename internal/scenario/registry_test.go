package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

type fakeScenario struct {
	id     string
	family models.TaskFamily
}

func (f *fakeScenario) Config() models.ScenarioConfig {
	return models.ScenarioConfig{ID: f.id, Family: f.family, Name: f.id}
}
func (f *fakeScenario) Setup(int) []models.Message { return nil }
func (f *fakeScenario) Tools() []models.ToolSchema { return nil }
func (f *fakeScenario) HandleToolCall(call models.ToolCallRequest) models.ToolCallResult {
	return models.ToolCallResult{CallID: call.ID}
}
func (f *fakeScenario) CheckTermination([]models.Message, int, int) bool { return true }
func (f *fakeScenario) Grade(*models.ScenarioResult) map[string]float64  { return nil }

func fakeTable() map[string]Constructor {
	return map[string]Constructor{
		"constraint/json_schema": func() Scenario {
			return &fakeScenario{id: "constraint/json_schema", family: models.FamilyConstraint}
		},
		"constraint/yaml": func() Scenario {
			return &fakeScenario{id: "constraint/yaml", family: models.FamilyConstraint}
		},
		"tool_use/research": func() Scenario {
			return &fakeScenario{id: "tool_use/research", family: models.FamilyToolUse}
		},
	}
}

func TestNewRegistryVerifiesIDs(t *testing.T) {
	_, err := NewRegistry(map[string]Constructor{
		"wrong/id": func() Scenario { return &fakeScenario{id: "other/id"} },
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "wrong/id")
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry(fakeTable())
	require.NoError(t, err)

	s, err := r.Get("constraint/json_schema")
	require.NoError(t, err)
	require.Equal(t, "constraint/json_schema", s.Config().ID)

	// Each Get returns a fresh instance.
	s2, err := r.Get("constraint/json_schema")
	require.NoError(t, err)
	require.NotSame(t, s, s2)

	_, err = r.Get("missing/scenario")
	require.Error(t, err)
}

func TestRegistryIDsSorted(t *testing.T) {
	r, err := NewRegistry(fakeTable())
	require.NoError(t, err)
	require.Equal(t, []string{"constraint/json_schema", "constraint/yaml", "tool_use/research"}, r.IDs())
}

func TestRegistryListFiltersByFamily(t *testing.T) {
	r, err := NewRegistry(fakeTable())
	require.NoError(t, err)

	all := r.List("")
	require.Len(t, all, 3)

	constraints := r.List("constraint")
	require.Len(t, constraints, 2)
	for _, info := range constraints {
		require.Equal(t, models.FamilyConstraint, info.Family)
	}

	require.Empty(t, r.List("convergence"))
}

func TestRegistryResolve(t *testing.T) {
	r, err := NewRegistry(fakeTable())
	require.NoError(t, err)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"all keyword", []string{"all"}, []string{"constraint/json_schema", "constraint/yaml", "tool_use/research"}},
		{"exact id", []string{"tool_use/research"}, []string{"tool_use/research"}},
		{"family glob", []string{"constraint/*"}, []string{"constraint/json_schema", "constraint/yaml"}},
		{"doublestar", []string{"**"}, []string{"constraint/json_schema", "constraint/yaml", "tool_use/research"}},
		{"deduplicated", []string{"constraint/*", "constraint/yaml"}, []string{"constraint/json_schema", "constraint/yaml"}},
		{"no match", []string{"missing/*"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.patterns)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
