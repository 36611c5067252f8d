package reporting

import (
	"fmt"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scoring"
)

// InterpretScore returns a plain-language label for a score in [0,1].
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretConsistency explains the spread of a metric across seeds.
// A scenario that sometimes passes and sometimes fails is flagged as
// inconsistent.
func InterpretConsistency(mv models.MetricValue) string {
	if mv.FailureRate > 0 && mv.FailureRate < 1 {
		return fmt.Sprintf("Inconsistent across seeds (%.0f%% of seeds failed). Consider more seeds or investigating non-determinism.",
			mv.FailureRate*100)
	}
	if mv.Std > 0.25 {
		return fmt.Sprintf("High variance across seeds (std %.2f).", mv.Std)
	}
	return "Consistent across seeds."
}

// FormatSummary produces a plain-language reading of a scorecard for
// terminal output.
func FormatSummary(card *models.Scorecard) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")
	fmt.Fprintf(&b, "Run %s on model %s: %d scenario(s)\n\n", card.RunID, card.Model, len(card.Entries))

	for _, entry := range card.Entries {
		weighted := scoring.WeightedScore(entry, nil)
		icon := "x"
		if mv, ok := entry.Metrics["task_success"]; ok && mv.Median > 0.5 {
			icon = "+"
		}
		fmt.Fprintf(&b, "  [%s] %s (%d seeds)\n", icon, entry.ScenarioID, entry.SeedsRun)
		fmt.Fprintf(&b, "      Weighted score: %.2f - %s\n", weighted, InterpretScore(weighted))
		if mv, ok := entry.Metrics["task_success"]; ok {
			fmt.Fprintf(&b, "      %s\n", InterpretConsistency(mv))
		}
	}

	return b.String()
}
