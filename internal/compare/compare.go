// Package compare diffs two scorecards, typically the same scenario set
// run with different models or prompting strategies.
package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// MetricDelta is one metric's median under each run. Positive Delta means
// the candidate run scored higher.
type MetricDelta struct {
	Metric    string  `json:"metric"`
	Base      float64 `json:"base"`
	Candidate float64 `json:"candidate"`
	Delta     float64 `json:"delta"`
}

// Entry compares one scenario present in both runs.
type Entry struct {
	ScenarioID  string        `json:"scenario_id"`
	Improvement float64       `json:"improvement"`
	Deltas      []MetricDelta `json:"deltas"`
}

// Result is the full comparison of two runs.
type Result struct {
	BaseRun        string   `json:"base_run"`
	CandidateRun   string   `json:"candidate_run"`
	BaseModel      string   `json:"base_model"`
	CandidateModel string   `json:"candidate_model"`
	Entries        []Entry  `json:"entries"`
	OnlyBase       []string `json:"only_base,omitempty"`
	OnlyCandidate  []string `json:"only_candidate,omitempty"`
	Improvement    float64  `json:"improvement"`
}

// Scorecards compares candidate against base. Scenarios present in only
// one run are listed but excluded from the improvement score.
func Scorecards(base, candidate *models.Scorecard) *Result {
	result := &Result{
		BaseRun:        base.RunID,
		CandidateRun:   candidate.RunID,
		BaseModel:      base.Model,
		CandidateModel: candidate.Model,
	}

	baseByID := entriesByID(base)
	candByID := entriesByID(candidate)

	for id := range baseByID {
		if _, ok := candByID[id]; !ok {
			result.OnlyBase = append(result.OnlyBase, id)
		}
	}
	for id := range candByID {
		if _, ok := baseByID[id]; !ok {
			result.OnlyCandidate = append(result.OnlyCandidate, id)
		}
	}
	sort.Strings(result.OnlyBase)
	sort.Strings(result.OnlyCandidate)

	shared := make([]string, 0, len(baseByID))
	for id := range baseByID {
		if _, ok := candByID[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)

	total := 0.0
	for _, id := range shared {
		entry := compareEntry(id, baseByID[id], candByID[id])
		total += entry.Improvement
		result.Entries = append(result.Entries, entry)
	}
	if len(result.Entries) > 0 {
		result.Improvement = total / float64(len(result.Entries))
	}
	return result
}

func entriesByID(card *models.Scorecard) map[string]models.ScorecardEntry {
	m := make(map[string]models.ScorecardEntry, len(card.Entries))
	for _, e := range card.Entries {
		m[e.ScenarioID] = e
	}
	return m
}

func compareEntry(id string, base, cand models.ScorecardEntry) Entry {
	names := map[string]bool{}
	for name := range base.Metrics {
		names[name] = true
	}
	for name := range cand.Metrics {
		names[name] = true
	}

	entry := Entry{ScenarioID: id}
	for name := range names {
		b := base.Metrics[name].Median
		c := cand.Metrics[name].Median
		entry.Deltas = append(entry.Deltas, MetricDelta{
			Metric:    name,
			Base:      b,
			Candidate: c,
			Delta:     c - b,
		})
	}
	sort.Slice(entry.Deltas, func(i, j int) bool {
		return entry.Deltas[i].Metric < entry.Deltas[j].Metric
	})
	entry.Improvement = improvement(base, cand)
	return entry
}

// improvement is a weighted composite in [-1, 1]. Task success dominates;
// efficiency and recovery are secondary signals.
func improvement(base, cand models.ScorecardEntry) float64 {
	median := func(e models.ScorecardEntry, name string) float64 {
		return e.Metrics[name].Median
	}
	passed := func(e models.ScorecardEntry) float64 {
		if median(e, "task_success") > 0.5 {
			return 1.0
		}
		return 0.0
	}

	score := (median(cand, "task_success")-median(base, "task_success"))*0.6 +
		(median(cand, "efficiency")-median(base, "efficiency"))*0.2 +
		(median(cand, "recovery_rate")-median(base, "recovery_rate"))*0.1 +
		(passed(cand)-passed(base))*0.1

	return math.Max(-1.0, math.Min(1.0, score))
}

// Format renders the comparison as plain text for the CLI.
func (r *Result) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Base:      %s (%s)\n", r.BaseRun, r.BaseModel)
	fmt.Fprintf(&b, "Candidate: %s (%s)\n\n", r.CandidateRun, r.CandidateModel)

	for _, entry := range r.Entries {
		marker := "="
		switch {
		case entry.Improvement > 0.01:
			marker = "+"
		case entry.Improvement < -0.01:
			marker = "-"
		}
		fmt.Fprintf(&b, "[%s] %s (improvement %+.2f)\n", marker, entry.ScenarioID, entry.Improvement)
		for _, d := range entry.Deltas {
			if d.Delta == 0 {
				continue
			}
			fmt.Fprintf(&b, "      %-24s %.4f -> %.4f (%+.4f)\n", d.Metric, d.Base, d.Candidate, d.Delta)
		}
	}
	for _, id := range r.OnlyBase {
		fmt.Fprintf(&b, "[?] %s only in base run\n", id)
	}
	for _, id := range r.OnlyCandidate {
		fmt.Fprintf(&b, "[?] %s only in candidate run\n", id)
	}

	if len(r.Entries) > 0 {
		fmt.Fprintf(&b, "\nOverall improvement: %+.3f\n", r.Improvement)
	}
	return b.String()
}
