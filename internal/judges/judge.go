// Package judges implements pluggable scorers that map output text plus a
// rubric to a bounded quality score: deterministic constraint checks,
// embedding similarity, rubric-based LLM judging, and a weighted ensemble.
package judges

import "context"

// Rubric is the free-form rubric definition passed to judges. Each judge
// decodes the fields it understands.
type Rubric map[string]any

// Score is the result of one judge invocation. Scores are always in [0,1].
type Score struct {
	JudgeName string         `json:"judge_name"`
	Score     float64        `json:"score"`
	Rationale string         `json:"rationale,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Judge scores free text against a rubric.
type Judge interface {
	// Name returns the judge name used in weights and rationales.
	Name() string

	// Score evaluates output against the rubric. Judges with a defined
	// fallback (embedding, rubric) degrade internally and return nil
	// errors; the ensemble converts any returned error into a zero score.
	Score(ctx context.Context, output string, rubric Rubric) (Score, error)
}
