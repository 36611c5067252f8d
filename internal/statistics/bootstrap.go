package statistics

import (
	"math/rand"
	"sort"

	"github.com/promptgauntlet/gauntlet/internal/metrics"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval
// computation over the sample mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumResamples    int     `json:"num_resamples"`
}

// DefaultBootstrapResamples is the number of bootstrap resamples.
const DefaultBootstrapResamples = 1000

// BootstrapCI computes a seeded bootstrap confidence interval for the mean
// using the percentile method. confidenceLevel should be in (0, 1), e.g.
// 0.95. Fewer than 2 data points degenerate to a zero-width interval at
// the sample mean.
func BootstrapCI(values []float64, nResamples int, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(values)
	m := metrics.Mean(values)
	if n < 2 {
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumResamples:    0,
		}
	}
	if nResamples <= 0 {
		nResamples = DefaultBootstrapResamples
	}

	rng := rand.New(rand.NewSource(seed))

	// Resample with replacement, keeping the mean of each resample.
	bootMeans := make([]float64, nResamples)
	sample := make([]float64, n)
	for i := 0; i < nResamples; i++ {
		for j := 0; j < n; j++ {
			sample[j] = values[rng.Intn(n)]
		}
		bootMeans[i] = metrics.Mean(sample)
	}

	sort.Float64s(bootMeans)

	alpha := 1.0 - confidenceLevel
	return ConfidenceInterval{
		Lower:           metrics.Percentile(bootMeans, 100*alpha/2),
		Upper:           metrics.Percentile(bootMeans, 100*(1-alpha/2)),
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumResamples:    nResamples,
	}
}
