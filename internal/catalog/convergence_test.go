package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/judges"
	"github.com/promptgauntlet/gauntlet/internal/models"
)

const strongDesign = "We add input validation at the boundary, an exception " +
	"hierarchy for typed failures, structured logging, graceful degradation " +
	"under load, and user-friendly error messages. Circuit breakers guard " +
	"external calls, with retry logic and fallback paths."

func TestCountInvariants(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		matched int
	}{
		{"all present", strongDesign, 5},
		{"single invariant", "we rely on logging", 1},
		{"word stem too short", "we log things to a file", 0},
		{"partial long word", "validation happens at every layer", 1},
		{"none", "wrap everything in a try block and move on", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, total := countInvariants(tt.text, errorHandlingRubric)
			require.Equal(t, tt.matched, matched)
			require.Equal(t, 5, total)
		})
	}
}

func TestKeywordCoverage(t *testing.T) {
	require.InDelta(t, 1.0, keywordCoverage(strongDesign, errorHandlingRubric), 1e-9)
	require.InDelta(t, 1.0/8.0, keywordCoverage("add a retry", errorHandlingRubric), 1e-9)
	require.Equal(t, 1.0, keywordCoverage("anything", judges.Rubric{}))
}

func TestBonusCoverage(t *testing.T) {
	require.InDelta(t, 4.0/6.0, bonusCoverage(strongDesign, errorHandlingRubric), 1e-9)
	require.Equal(t, 0.0, bonusCoverage("anything", judges.Rubric{}))
}

func TestConvergencePolicy(t *testing.T) {
	s := NewConvergence()
	policy := s.ScriptedPolicy()

	msg, ok := policy.NextMessage(nil, 0, s)
	require.True(t, ok)
	require.Contains(t, msg, "error handling system")

	msg, ok = policy.NextMessage(nil, 1, s)
	require.True(t, ok)
	require.Contains(t, msg, "exception hierarchy")

	msg, ok = policy.NextMessage(nil, 2, s)
	require.True(t, ok)
	require.Contains(t, msg, "circuit breakers")

	_, ok = policy.NextMessage(nil, 3, s)
	require.False(t, ok)
}

func TestConvergenceTermination(t *testing.T) {
	s := NewConvergence()
	user := models.Message{Role: models.RoleUser, Content: "u"}
	asst := models.Message{Role: models.RoleAssistant, Content: "a"}
	require.False(t, s.CheckTermination([]models.Message{user, asst, user, asst, user}, 5, 0))
	require.True(t, s.CheckTermination([]models.Message{user, asst, user, asst, user, asst, user}, 7, 0))
}

func TestConvergenceGradeRefinement(t *testing.T) {
	s := NewConvergence()
	result := &models.ScenarioResult{
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "describe an error handling system"},
			{Role: models.RoleAssistant, Content: "Wrap everything in a try block and move on."},
			{Role: models.RoleUser, Content: "expand"},
			{Role: models.RoleAssistant, Content: strongDesign},
		},
		TotalTokens: 1000,
	}

	metrics := s.Grade(result)
	require.Equal(t, 1.0, metrics["task_success"])
	require.Equal(t, 1.0, metrics["invariant_coverage"])
	require.Equal(t, 1.0, metrics["convergence_rate"])
	require.InDelta(t, 1.0, metrics["keyword_coverage"], 1e-9)
	require.InDelta(t, 4.0/6.0, metrics["bonus_coverage"], 1e-9)
	require.InDelta(t, 0.75, metrics["efficiency"], 1e-9)
	require.Equal(t, 5.0, metrics["invariants_matched"])
	require.Equal(t, 5.0, metrics["invariants_total"])
}

func TestConvergenceGradePassBoundary(t *testing.T) {
	s := NewConvergence()
	fourOfFive := "The design covers input validation, an exception hierarchy, " +
		"centralized logging, and graceful degradation."
	metrics := s.Grade(&models.ScenarioResult{
		Messages: []models.Message{{Role: models.RoleAssistant, Content: fourOfFive}},
	})
	require.Equal(t, 1.0, metrics["task_success"])
	require.Equal(t, 0.8, metrics["invariant_coverage"])
	require.Equal(t, 0.0, metrics["convergence_rate"], "single response cannot converge")
}

func TestConvergenceGradeNoAssistantOutput(t *testing.T) {
	s := NewConvergence()
	metrics := s.Grade(&models.ScenarioResult{
		Messages: []models.Message{{Role: models.RoleUser, Content: "hello"}},
	})
	for _, key := range []string{"task_success", "invariant_coverage", "keyword_coverage", "bonus_coverage", "convergence_rate", "efficiency"} {
		require.Equal(t, 0.0, metrics[key], key)
	}
}
