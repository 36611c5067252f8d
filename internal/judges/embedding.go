package judges

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Embedder is the external embedding capability the embedding judge
// consumes. Implementations may wrap a hosted API or be entirely local.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

type embeddingRubric struct {
	ReferenceText  string   `mapstructure:"reference_text"`
	Threshold      float64  `mapstructure:"threshold"`
	TargetKeywords []string `mapstructure:"target_keywords"`
}

// EmbeddingJudge scores output by cosine similarity to a reference text,
// rescaled around a threshold pivot: below-threshold similarities map into
// [0, 0.5], above-threshold into [0.5, 1.0]. Without an embedder, or when
// embedding fails, it falls back to lexical similarity and never errors.
type EmbeddingJudge struct {
	embedder Embedder
}

// NewEmbeddingJudge creates an EmbeddingJudge. A nil embedder forces the
// lexical fallback.
func NewEmbeddingJudge(embedder Embedder) *EmbeddingJudge {
	return &EmbeddingJudge{embedder: embedder}
}

func (j *EmbeddingJudge) Name() string { return "embedding" }

func (j *EmbeddingJudge) Score(ctx context.Context, output string, rubric Rubric) (Score, error) {
	var r embeddingRubric
	if err := mapstructure.Decode(map[string]any(rubric), &r); err != nil {
		return Score{}, fmt.Errorf("decoding embedding rubric: %w", err)
	}
	if r.Threshold == 0 {
		r.Threshold = 0.8
	}

	if r.ReferenceText == "" || j.embedder == nil {
		return j.fallbackScore(output, r), nil
	}

	vecs, err := j.embedder.Embed(ctx, []string{output, r.ReferenceText})
	if err != nil || len(vecs) != 2 {
		return j.fallbackScore(output, r), nil
	}

	sim := cosineSimilarity(vecs[0], vecs[1])
	sim = math.Max(0.0, math.Min(1.0, sim))

	// Threshold acts as a pass/fail pivot rather than a hard cutoff.
	var scaled float64
	if sim >= r.Threshold {
		scaled = 0.5 + 0.5*(sim-r.Threshold)/(1.0-r.Threshold+1e-8)
	} else {
		scaled = 0.5 * sim / (r.Threshold + 1e-8)
	}

	return Score{
		JudgeName: j.Name(),
		Score:     scaled,
		Rationale: fmt.Sprintf("Cosine similarity: %.4f (threshold: %.2f)", sim, r.Threshold),
		Metadata: map[string]any{
			"raw_similarity": sim,
			"threshold":      r.Threshold,
		},
	}, nil
}

// fallbackScore approximates similarity lexically: Jaccard overlap with the
// reference when one exists, keyword coverage otherwise.
func (j *EmbeddingJudge) fallbackScore(output string, r embeddingRubric) Score {
	if r.ReferenceText == "" {
		if len(r.TargetKeywords) > 0 {
			textLower := strings.ToLower(output)
			found := 0
			for _, kw := range r.TargetKeywords {
				if strings.Contains(textLower, strings.ToLower(kw)) {
					found++
				}
			}
			return Score{
				JudgeName: j.Name(),
				Score:     float64(found) / float64(len(r.TargetKeywords)),
				Rationale: "Fallback: keyword matching (no embedder available)",
				Metadata:  map[string]any{"fallback": true},
			}
		}
		return Score{
			JudgeName: j.Name(),
			Score:     0.5,
			Rationale: "Fallback: no reference available",
			Metadata:  map[string]any{"fallback": true},
		}
	}

	outputWords := wordSet(output)
	refWords := wordSet(r.ReferenceText)
	if len(outputWords) == 0 || len(refWords) == 0 {
		return Score{
			JudgeName: j.Name(),
			Score:     0.0,
			Rationale: "Empty text",
			Metadata:  map[string]any{"fallback": true},
		}
	}

	intersection := 0
	for w := range outputWords {
		if _, ok := refWords[w]; ok {
			intersection++
		}
	}
	union := len(outputWords) + len(refWords) - intersection
	jaccard := float64(intersection) / float64(union)

	return Score{
		JudgeName: j.Name(),
		Score:     jaccard,
		Rationale: fmt.Sprintf("Fallback Jaccard similarity: %.4f", jaccard),
		Metadata:  map[string]any{"fallback": true, "jaccard": jaccard},
	}
}

func wordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-8)
}
