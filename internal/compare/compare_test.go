package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

func entry(id string, medians map[string]float64) models.ScorecardEntry {
	metrics := make(map[string]models.MetricValue, len(medians))
	for name, v := range medians {
		metrics[name] = models.MetricValue{Name: name, Median: v}
	}
	return models.ScorecardEntry{ScenarioID: id, Metrics: metrics}
}

func card(runID, model string, entries ...models.ScorecardEntry) *models.Scorecard {
	return &models.Scorecard{RunID: runID, Model: model, Entries: entries}
}

func TestScorecardsCandidateBetter(t *testing.T) {
	base := card("run_a", "mock",
		entry("constraint/json_schema", map[string]float64{
			"task_success": 0.0, "efficiency": 0.5, "recovery_rate": 0.0,
		}))
	cand := card("run_b", "gpt-4o",
		entry("constraint/json_schema", map[string]float64{
			"task_success": 1.0, "efficiency": 0.8, "recovery_rate": 0.0,
		}))

	result := Scorecards(base, cand)
	require.Len(t, result.Entries, 1)

	e := result.Entries[0]
	// 0.6*1.0 + 0.2*0.3 + 0.1*0.0 + 0.1*1.0
	assert.InDelta(t, 0.76, e.Improvement, 1e-9)
	assert.InDelta(t, 0.76, result.Improvement, 1e-9)

	require.Len(t, e.Deltas, 3)
	assert.Equal(t, "efficiency", e.Deltas[0].Metric)
	assert.InDelta(t, 0.3, e.Deltas[0].Delta, 1e-9)
	assert.Equal(t, "task_success", e.Deltas[2].Metric)
	assert.InDelta(t, 1.0, e.Deltas[2].Delta, 1e-9)
}

func TestScorecardsCandidateWorse(t *testing.T) {
	base := card("run_a", "mock",
		entry("tool_use/research_calculate", map[string]float64{"task_success": 1.0}))
	cand := card("run_b", "mock",
		entry("tool_use/research_calculate", map[string]float64{"task_success": 0.0}))

	result := Scorecards(base, cand)
	require.Len(t, result.Entries, 1)
	assert.InDelta(t, -0.7, result.Entries[0].Improvement, 1e-9)
	assert.Less(t, result.Improvement, 0.0)
}

func TestScorecardsDisjointScenarios(t *testing.T) {
	base := card("run_a", "mock",
		entry("constraint/json_schema", map[string]float64{"task_success": 1.0}),
		entry("convergence/error_handling", map[string]float64{"task_success": 1.0}))
	cand := card("run_b", "mock",
		entry("constraint/json_schema", map[string]float64{"task_success": 1.0}),
		entry("classification/sentiment", map[string]float64{"task_success": 1.0}))

	result := Scorecards(base, cand)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, []string{"convergence/error_handling"}, result.OnlyBase)
	assert.Equal(t, []string{"classification/sentiment"}, result.OnlyCandidate)
	assert.Equal(t, 0.0, result.Improvement)
}

func TestScorecardsMetricUnion(t *testing.T) {
	base := card("a", "m", entry("s/x", map[string]float64{"task_success": 1.0}))
	cand := card("b", "m", entry("s/x", map[string]float64{"task_success": 1.0, "extra": 0.4}))

	result := Scorecards(base, cand)
	require.Len(t, result.Entries, 1)
	require.Len(t, result.Entries[0].Deltas, 2)
	assert.Equal(t, "extra", result.Entries[0].Deltas[0].Metric)
	assert.InDelta(t, 0.4, result.Entries[0].Deltas[0].Delta, 1e-9)
}

func TestImprovementClamped(t *testing.T) {
	base := entry("s/x", map[string]float64{"task_success": -2.0})
	cand := entry("s/x", map[string]float64{"task_success": 2.0})
	assert.Equal(t, 1.0, improvement(base, cand))
	assert.Equal(t, -1.0, improvement(cand, base))
}

func TestFormat(t *testing.T) {
	base := card("run_a", "mock",
		entry("constraint/json_schema", map[string]float64{"task_success": 0.0}),
		entry("tool_use/research_calculate", map[string]float64{"task_success": 1.0}))
	cand := card("run_b", "mock",
		entry("constraint/json_schema", map[string]float64{"task_success": 1.0}),
		entry("tool_use/research_calculate", map[string]float64{"task_success": 1.0}))

	out := Scorecards(base, cand).Format()
	assert.Contains(t, out, "Base:      run_a (mock)")
	assert.Contains(t, out, "[+] constraint/json_schema")
	assert.Contains(t, out, "[=] tool_use/research_calculate")
	assert.Contains(t, out, "task_success")
	assert.Contains(t, out, "Overall improvement:")
}
