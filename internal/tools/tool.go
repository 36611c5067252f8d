// Package tools implements the deterministic utilities scenarios expose to
// the model: a knowledge-corpus search, a calculator, and a small file
// store. Tool failures never cross the dispatch boundary as Go errors;
// they are converted into error-flagged results visible to the model.
package tools

import (
	"fmt"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// Tool is a deterministic utility callable by the model.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Description returns the human-readable tool description.
	Description() string

	// ParametersSchema returns the JSON Schema for the tool's arguments.
	ParametersSchema() map[string]any

	// Execute runs the tool. Invalid arguments or domain errors (e.g.
	// division by zero) are returned as errors and converted by the
	// registry into error-flagged results.
	Execute(arguments map[string]any) (string, error)
}

// Registry routes tool calls by name.
type Registry struct {
	tools []Tool
	byName map[string]Tool
}

// NewRegistry creates a registry over the given tools. Registration order
// is preserved in Schemas.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds a tool. A tool with a duplicate name replaces the earlier
// registration.
func (r *Registry) Register(t Tool) {
	if _, ok := r.byName[t.Name()]; !ok {
		r.tools = append(r.tools, t)
	}
	r.byName[t.Name()] = t
}

// Schemas returns the schemas of all registered tools.
func (r *Registry) Schemas() []models.ToolSchema {
	schemas := make([]models.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		schemas = append(schemas, models.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.ParametersSchema(),
		})
	}
	return schemas
}

// HandleCall routes a tool call request to the named tool. Unknown tools
// and execution failures produce an error-flagged result, never a Go error;
// one failing tool must never abort a run.
func (r *Registry) HandleCall(call models.ToolCallRequest) models.ToolCallResult {
	t, ok := r.byName[call.Name]
	if !ok {
		return models.ToolCallResult{
			CallID:  call.ID,
			Name:    call.Name,
			Result:  fmt.Sprintf("Error: unknown tool %q", call.Name),
			IsError: true,
		}
	}

	out, err := t.Execute(call.Arguments)
	if err != nil {
		return models.ToolCallResult{
			CallID:  call.ID,
			Name:    call.Name,
			Result:  fmt.Sprintf("Error: %v", err),
			IsError: true,
		}
	}
	return models.ToolCallResult{
		CallID: call.ID,
		Name:   call.Name,
		Result: out,
	}
}
