// Package catalog holds the built-in scenarios, one per task family.
package catalog

import "github.com/promptgauntlet/gauntlet/internal/scenario"

// DefaultRegistry builds the registry of built-in scenarios.
func DefaultRegistry() (*scenario.Registry, error) {
	return scenario.NewRegistry(map[string]scenario.Constructor{
		"classification/sentiment":    func() scenario.Scenario { return NewClassification() },
		"constraint/json_schema":      func() scenario.Scenario { return NewConstraint() },
		"tool_use/research_calculate": func() scenario.Scenario { return NewToolUse() },
		"convergence/error_handling":  func() scenario.Scenario { return NewConvergence() },
	})
}
