package judges

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardEnsembleDeterministicFallbacks(t *testing.T) {
	e := StandardEnsemble(nil, nil, map[string]float64{
		"constraint": 0.3,
		"embedding":  0.3,
		"rubric":     0.4,
	}, 0)

	rubric := Rubric{
		"criteria":        []any{"retries", "backoff"},
		"target_keywords": []any{"backoff"},
	}
	score, err := e.Score(context.Background(), "use retries with exponential backoff", rubric)
	require.NoError(t, err)

	// Every member matches the full rubric, so variance is zero and the
	// weighted average is exact.
	require.InDelta(t, 1.0, score.Score, 1e-9)
	perJudge := score.Metadata["per_judge"].(map[string]any)
	require.Len(t, perJudge, 3)
	require.Contains(t, perJudge, "constraint")
	require.Contains(t, perJudge, "embedding")
	require.Contains(t, perJudge, "rubric")
}

func TestStandardEnsemblePenalty(t *testing.T) {
	require.Equal(t, DefaultDisagreementPenalty, StandardEnsemble(nil, nil, nil, 0).penalty)
	require.Equal(t, 0.25, StandardEnsemble(nil, nil, nil, 0.25).penalty)
}
