// Package statistics computes robust per-metric statistics and bootstrap
// confidence intervals over seed-level metric values.
package statistics

import "github.com/promptgauntlet/gauntlet/internal/metrics"

// RobustStats holds outlier-resistant summary statistics for one metric.
type RobustStats struct {
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Std         float64 `json:"std"`
	P10         float64 `json:"p10"`
	P90         float64 `json:"p90"`
	FailureRate float64 `json:"failure_rate"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// Robust computes RobustStats over a value series. An empty series is
// treated as total failure: every field is zero except FailureRate, which
// is 1.0.
func Robust(values []float64) RobustStats {
	if len(values) == 0 {
		return RobustStats{FailureRate: 1.0}
	}

	minV, maxV := values[0], values[0]
	failures := 0
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		if v <= 0 {
			failures++
		}
	}

	return RobustStats{
		Mean:        metrics.Mean(values),
		Median:      metrics.Median(values),
		Std:         metrics.StdDev(values),
		P10:         metrics.Percentile(values, 10),
		P90:         metrics.Percentile(values, 90),
		FailureRate: float64(failures) / float64(len(values)),
		Min:         minV,
		Max:         maxV,
	}
}
