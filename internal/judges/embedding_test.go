package judges

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedEmbedder returns a canned vector per input text.
type fixedEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (e *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, tx := range texts {
		out[i] = e.vectors[tx]
	}
	return out, nil
}

func TestEmbeddingJudgeIdenticalVectors(t *testing.T) {
	emb := &fixedEmbedder{vectors: map[string][]float64{
		"output": {1, 0, 0},
		"ref":    {1, 0, 0},
	}}
	j := NewEmbeddingJudge(emb)

	score, err := j.Score(context.Background(), "output", Rubric{"reference_text": "ref"})
	require.NoError(t, err)
	// Similarity 1.0 lands at the top of the above-threshold band.
	require.InDelta(t, 1.0, score.Score, 1e-6)
	require.Equal(t, "embedding", score.JudgeName)
}

func TestEmbeddingJudgeOrthogonalVectors(t *testing.T) {
	emb := &fixedEmbedder{vectors: map[string][]float64{
		"output": {1, 0},
		"ref":    {0, 1},
	}}
	j := NewEmbeddingJudge(emb)

	score, err := j.Score(context.Background(), "output", Rubric{"reference_text": "ref"})
	require.NoError(t, err)
	require.InDelta(t, 0.0, score.Score, 1e-6)
}

func TestEmbeddingJudgeThresholdPivot(t *testing.T) {
	// cos(v, ref) = 0.8 exactly, which sits at the default pivot.
	emb := &fixedEmbedder{vectors: map[string][]float64{
		"output": {0.8, 0.6},
		"ref":    {1, 0},
	}}
	j := NewEmbeddingJudge(emb)

	score, err := j.Score(context.Background(), "output", Rubric{"reference_text": "ref"})
	require.NoError(t, err)
	require.InDelta(t, 0.5, score.Score, 1e-3)
}

func TestEmbeddingJudgeFallbackJaccard(t *testing.T) {
	j := NewEmbeddingJudge(nil)
	score, err := j.Score(context.Background(), "alpha beta gamma", Rubric{
		"reference_text": "alpha beta delta",
	})
	require.NoError(t, err)
	// Intersection {alpha, beta} over union {alpha, beta, gamma, delta}.
	require.InDelta(t, 0.5, score.Score, 1e-9)
	require.Equal(t, true, score.Metadata["fallback"])
}

func TestEmbeddingJudgeFallbackKeywords(t *testing.T) {
	j := NewEmbeddingJudge(nil)
	score, err := j.Score(context.Background(), "add a retry with a timeout everywhere", Rubric{
		"target_keywords": []any{"retry", "timeout", "fallback", "jitter"},
	})
	require.NoError(t, err)
	require.InDelta(t, 0.5, score.Score, 1e-9)
}

func TestEmbeddingJudgeFallbackNoReference(t *testing.T) {
	j := NewEmbeddingJudge(nil)
	score, err := j.Score(context.Background(), "any output", Rubric{})
	require.NoError(t, err)
	require.Equal(t, 0.5, score.Score)
}

func TestEmbeddingJudgeEmbedErrorFallsBack(t *testing.T) {
	emb := &fixedEmbedder{err: fmt.Errorf("api down")}
	j := NewEmbeddingJudge(emb)

	score, err := j.Score(context.Background(), "alpha beta", Rubric{"reference_text": "alpha beta"})
	require.NoError(t, err)
	require.InDelta(t, 1.0, score.Score, 1e-9)
	require.Equal(t, true, score.Metadata["fallback"])
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float64{2, 0}, []float64{4, 0}), 1e-6)
	require.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-6)
	require.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-6)
}
