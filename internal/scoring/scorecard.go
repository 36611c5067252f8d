// Package scoring aggregates seed-level scenario results into scorecards
// and ranks scorecard entries across multiple objectives.
package scoring

import (
	"sort"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/statistics"
)

// ComputeScorecard groups ScenarioResults by scenario ID and computes
// robust statistics per metric. The metric set per scenario is the union of
// metric names across all seeds; a seed missing a metric contributes 0.0
// for it.
func ComputeScorecard(results []*models.ScenarioResult, runID, model string) *models.Scorecard {
	grouped := make(map[string][]*models.ScenarioResult)
	for _, r := range results {
		grouped[r.ScenarioID] = append(grouped[r.ScenarioID], r)
	}

	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]models.ScorecardEntry, 0, len(ids))
	for _, id := range ids {
		seeds := grouped[id]

		nameSet := make(map[string]struct{})
		for _, r := range seeds {
			for name := range r.Metrics {
				nameSet[name] = struct{}{}
			}
		}
		names := make([]string, 0, len(nameSet))
		for name := range nameSet {
			names = append(names, name)
		}
		sort.Strings(names)

		entryMetrics := make(map[string]models.MetricValue, len(names))
		for _, name := range names {
			values := make([]float64, len(seeds))
			for i, r := range seeds {
				values[i] = r.Metrics[name] // missing keys default to 0.0
			}
			stats := statistics.Robust(values)
			entryMetrics[name] = models.MetricValue{
				Name:        name,
				Values:      values,
				Mean:        stats.Mean,
				Median:      stats.Median,
				Std:         stats.Std,
				P10:         stats.P10,
				P90:         stats.P90,
				FailureRate: stats.FailureRate,
			}
		}

		entries = append(entries, models.ScorecardEntry{
			ScenarioID:   id,
			Family:       DetectFamily(id),
			ScenarioName: scenarioName(id),
			Metrics:      entryMetrics,
			SeedsRun:     len(seeds),
		})
	}

	return &models.Scorecard{
		SchemaVersion: models.SchemaVersion,
		RunID:         runID,
		Model:         model,
		Entries:       entries,
	}
}

// DetectFamily infers the task family from the scenario ID prefix.
// Unknown prefixes fall back to classification.
func DetectFamily(scenarioID string) models.TaskFamily {
	switch {
	case strings.HasPrefix(scenarioID, "classification"):
		return models.FamilyClassification
	case strings.HasPrefix(scenarioID, "constraint"):
		return models.FamilyConstraint
	case strings.HasPrefix(scenarioID, "tool_use"):
		return models.FamilyToolUse
	case strings.HasPrefix(scenarioID, "convergence"):
		return models.FamilyConvergence
	default:
		return models.FamilyClassification
	}
}

// scenarioName derives a display name from a scenario ID, e.g.
// "constraint/json_schema" -> "Constraint - Json Schema".
func scenarioName(scenarioID string) string {
	s := strings.ReplaceAll(scenarioID, "/", " - ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Title(s) //nolint:staticcheck // ASCII scenario IDs only
}
