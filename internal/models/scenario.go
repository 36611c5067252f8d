package models

// TaskFamily groups scenarios by the capability they exercise.
type TaskFamily string

const (
	FamilyClassification TaskFamily = "classification"
	FamilyConstraint     TaskFamily = "constraint"
	FamilyToolUse        TaskFamily = "tool_use"
	FamilyConvergence    TaskFamily = "convergence"
)

// ScenarioConfig describes a single scenario.
type ScenarioConfig struct {
	ID           string         `json:"id" yaml:"id"`
	Family       TaskFamily     `json:"family" yaml:"family"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Params       map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	BudgetTokens int            `json:"budget_tokens" yaml:"budget_tokens"`
	BudgetTurns  int            `json:"budget_turns" yaml:"budget_turns"`
}

// ToolSchema describes a tool exposed to the model.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ScenarioResult is the outcome of one (scenario, seed) run. It is built
// once from the final transcript and finalized when grading attaches
// Metrics and Success; it is never mutated afterward.
type ScenarioResult struct {
	ScenarioID  string             `json:"scenario_id"`
	Seed        int                `json:"seed"`
	Success     bool               `json:"success"`
	Messages    []Message          `json:"messages"`
	TotalTokens int                `json:"total_tokens"`
	TotalTurns  int                `json:"total_turns"`
	Metrics     map[string]float64 `json:"metrics"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

// FinalAssistantText returns the content of the last assistant message that
// carries no pending tool calls, or "" when none exists.
func (r *ScenarioResult) FinalAssistantText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if m.Role == RoleAssistant && len(m.ToolCalls) == 0 {
			return m.Content
		}
	}
	return ""
}
