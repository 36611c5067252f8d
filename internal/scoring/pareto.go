package scoring

import (
	"sort"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// DefaultObjectives are the metrics used for Pareto ranking when the caller
// does not choose its own objective vector.
var DefaultObjectives = []string{"task_success", "efficiency"}

// ParetoEntry is one scenario's position in a Pareto ranking.
type ParetoEntry struct {
	ScenarioID     string             `json:"scenario_id"`
	Rank           int                `json:"rank"`
	IsParetoFront  bool               `json:"is_pareto_optimal"`
	Objectives     map[string]float64 `json:"objectives"`
	objectiveOrder []float64
}

// Dominates reports whether a Pareto-dominates b: every coordinate of a is
// >= the corresponding coordinate of b and at least one is strictly greater.
func Dominates(a, b []float64) bool {
	better := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			better = true
		}
	}
	return better
}

// ParetoRank assigns front-by-front ranks over the scorecard entries using
// the median of each objective metric. Rank 1 is the set of non-dominated
// entries; rank 2 is the next front once rank 1 is removed, and so on.
// Front extraction is a repeated full-set domination scan, which is
// quadratic per front; fine for scorecards of tens of scenarios.
func ParetoRank(card *models.Scorecard, objectives []string) []ParetoEntry {
	if len(objectives) == 0 {
		objectives = DefaultObjectives
	}

	entries := make([]ParetoEntry, len(card.Entries))
	for i, e := range card.Entries {
		vec := make([]float64, len(objectives))
		objs := make(map[string]float64, len(objectives))
		for j, name := range objectives {
			if mv, ok := e.Metrics[name]; ok {
				vec[j] = mv.Median
			}
			objs[name] = vec[j]
		}
		entries[i] = ParetoEntry{
			ScenarioID:     e.ScenarioID,
			Objectives:     objs,
			objectiveOrder: vec,
		}
	}

	remaining := make([]int, len(entries))
	for i := range remaining {
		remaining[i] = i
	}

	rank := 1
	for len(remaining) > 0 {
		var front, rest []int
		for _, i := range remaining {
			dominated := false
			for _, j := range remaining {
				if i != j && Dominates(entries[j].objectiveOrder, entries[i].objectiveOrder) {
					dominated = true
					break
				}
			}
			if dominated {
				rest = append(rest, i)
			} else {
				front = append(front, i)
			}
		}
		for _, i := range front {
			entries[i].Rank = rank
			entries[i].IsParetoFront = rank == 1
		}
		remaining = rest
		rank++
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rank < entries[j].Rank
	})
	return entries
}

// WeightedScore computes a normalized weighted sum over an entry's metric
// medians. Metrics absent from the entry are skipped and excluded from the
// normalization denominator; if no weighted metric is present the score is
// 0.0.
func WeightedScore(entry models.ScorecardEntry, weights map[string]float64) float64 {
	if len(weights) == 0 {
		weights = map[string]float64{
			"task_success":  0.5,
			"efficiency":    0.2,
			"recovery_rate": 0.15,
		}
	}

	totalWeight := 0.0
	totalScore := 0.0
	for name, w := range weights {
		mv, ok := entry.Metrics[name]
		if !ok {
			continue
		}
		totalScore += w * mv.Median
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0.0
	}
	return totalScore / totalWeight
}
