package judges

// StandardEnsemble builds the default three-member ensemble: deterministic
// constraint checks, embedding similarity, and rubric judging. A nil
// client or embedder selects the corresponding judge's deterministic
// fallback; a zero penalty keeps DefaultDisagreementPenalty.
func StandardEnsemble(client Completer, embedder Embedder, weights map[string]float64, penalty float64) *Ensemble {
	members := []Judge{
		NewConstraintJudge(),
		NewEmbeddingJudge(embedder),
		NewRubricJudge(client),
	}
	opts := []EnsembleOption{WithWeights(weights)}
	if penalty > 0 {
		opts = append(opts, WithDisagreementPenalty(penalty))
	}
	return NewEnsemble(members, opts...)
}
