package models

// SchemaVersion is the scorecard artifact schema version.
const SchemaVersion = "1.0"

// MetricValue holds robust statistics for one metric across seeds. It is
// derived data, recomputed on every aggregation.
type MetricValue struct {
	Name        string    `json:"name"`
	Values      []float64 `json:"values"`
	Mean        float64   `json:"mean"`
	Median      float64   `json:"median"`
	Std         float64   `json:"std"`
	P10         float64   `json:"p10"`
	P90         float64   `json:"p90"`
	FailureRate float64   `json:"failure_rate"`
}

// ScorecardEntry aggregates all seeds for one scenario.
type ScorecardEntry struct {
	ScenarioID   string                 `json:"scenario_id"`
	Family       TaskFamily             `json:"family"`
	ScenarioName string                 `json:"scenario_name"`
	Metrics      map[string]MetricValue `json:"metrics"`
	SeedsRun     int                    `json:"seeds_run"`
}

// Scorecard is the canonical per-run result artifact. Reports are derived
// views and never additional sources of truth.
type Scorecard struct {
	SchemaVersion string           `json:"schema_version"`
	RunID         string           `json:"run_id"`
	Model         string           `json:"model"`
	Entries       []ScorecardEntry `json:"entries"`
}
