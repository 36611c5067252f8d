package judges

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/metrics"
)

// DefaultDisagreementPenalty scales the score variance subtracted from
// the weighted average.
const DefaultDisagreementPenalty = 0.1

// Ensemble aggregates scores from multiple judges with a disagreement
// penalty proportional to score variance. A failing member judge
// contributes a zero score instead of failing the ensemble.
type Ensemble struct {
	judges  []Judge
	weights map[string]float64
	penalty float64
}

type EnsembleOption func(*Ensemble)

// WithWeights sets per-judge weights by judge name. Unnamed judges get an
// equal share; weights are renormalized before averaging.
func WithWeights(weights map[string]float64) EnsembleOption {
	return func(e *Ensemble) { e.weights = weights }
}

// WithDisagreementPenalty overrides the variance penalty factor.
func WithDisagreementPenalty(penalty float64) EnsembleOption {
	return func(e *Ensemble) { e.penalty = penalty }
}

func NewEnsemble(judges []Judge, opts ...EnsembleOption) *Ensemble {
	e := &Ensemble{
		judges:  judges,
		weights: map[string]float64{},
		penalty: DefaultDisagreementPenalty,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Ensemble) Name() string { return "ensemble" }

func (e *Ensemble) Score(ctx context.Context, output string, rubric Rubric) (Score, error) {
	memberScores := make([]Score, 0, len(e.judges))
	for _, judge := range e.judges {
		js, err := judge.Score(ctx, output, rubric)
		if err != nil {
			js = Score{
				JudgeName: judge.Name(),
				Score:     0.0,
				Rationale: fmt.Sprintf("Judge error: %v", err),
				Metadata:  map[string]any{"error": true},
			}
		}
		memberScores = append(memberScores, js)
	}

	if len(memberScores) == 0 {
		return Score{JudgeName: e.Name(), Score: 0.0, Rationale: "No judges available"}, nil
	}

	scores := make([]float64, len(memberScores))
	weights := make([]float64, len(memberScores))
	equalShare := 1.0 / float64(len(memberScores))
	for i, js := range memberScores {
		scores[i] = js.Score
		if w, ok := e.weights[js.JudgeName]; ok {
			weights[i] = w
		} else {
			weights[i] = equalShare
		}
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	var weightedAvg float64
	if totalWeight > 0 {
		for i, s := range scores {
			weightedAvg += s * weights[i] / totalWeight
		}
	}

	var variance, penalty float64
	if len(scores) > 1 {
		variance = metrics.Variance(scores)
		penalty = e.penalty * variance
	}

	perJudge := make(map[string]any, len(memberScores))
	parts := make([]string, 0, len(memberScores))
	for _, js := range memberScores {
		perJudge[js.JudgeName] = js.Score
		parts = append(parts, fmt.Sprintf("%s: %.3f", js.JudgeName, js.Score))
	}

	return Score{
		JudgeName: e.Name(),
		Score:     metrics.Clamp01(weightedAvg - penalty),
		Rationale: fmt.Sprintf("Ensemble (%s), weighted avg: %.3f, variance: %.4f, penalty: %.4f",
			strings.Join(parts, ", "), weightedAvg, variance, penalty),
		Metadata: map[string]any{
			"per_judge":        perJudge,
			"weighted_average": weightedAvg,
			"variance":         variance,
			"penalty":          penalty,
		},
	}, nil
}
