package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
)

var personSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1},
		"age":  map[string]any{"type": "integer", "minimum": 0, "maximum": 150},
		"email": map[string]any{
			"type":    "string",
			"pattern": `^[^@]+@[^@]+\.[^@]+$`,
		},
		"address": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"street": map[string]any{"type": "string", "minLength": 1},
				"city":   map[string]any{"type": "string", "minLength": 1},
				"state":  map[string]any{"type": "string", "minLength": 2, "maxLength": 2},
				"zip":    map[string]any{"type": "string", "pattern": `^\d{5}$`},
			},
			"required": []any{"street", "city", "state", "zip"},
		},
	},
	"required": []any{"name", "age", "email", "address"},
}

// validateJSONSchema checks text against a JSON schema and returns the
// validation errors, with a parse failure reported as a single error.
func validateJSONSchema(text string, schemaMap map[string]any) (bool, []string) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return false, []string{fmt.Sprintf("Invalid JSON: %v", err)}
	}

	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return false, []string{fmt.Sprintf("Invalid schema: %v", err)}
	}
	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return false, []string{fmt.Sprintf("Invalid schema: %v", err)}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaValue); err != nil {
		return false, []string{fmt.Sprintf("Schema resource error: %v", err)}
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return false, []string{fmt.Sprintf("Schema compile error: %v", err)}
	}

	if err := schema.Validate(value); err != nil {
		return false, []string{fmt.Sprintf("Schema validation failed: %v", err)}
	}
	return true, nil
}

// constraintPolicy instructs once, then feeds validation errors back to
// the model for up to three fix-up attempts.
type constraintPolicy struct {
	attempts int
}

func (p *constraintPolicy) NextMessage(messages []models.Message, turn int, _ scenario.Scenario) (string, bool) {
	if turn == 0 {
		schemaStr, _ := json.MarshalIndent(personSchema, "", "  ")
		return fmt.Sprintf(
			"Generate a valid JSON object that matches this schema exactly:\n```json\n%s\n```\nOutput ONLY the JSON, no other text.",
			schemaStr), true
	}

	var lastAssistant string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleAssistant {
			lastAssistant = messages[i].Content
			break
		}
	}
	if lastAssistant == "" {
		return "", false
	}

	valid, errors := validateJSONSchema(lastAssistant, personSchema)
	if valid {
		return "", false
	}
	p.attempts++
	if p.attempts >= 3 {
		return "", false
	}

	if len(errors) > 5 {
		errors = errors[:5]
	}
	var b strings.Builder
	b.WriteString("The JSON has validation errors:\n")
	for _, e := range errors {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("Please fix and output ONLY the corrected JSON.")
	return b.String(), true
}

// Constraint is the JSON schema conformance scenario: produce an object
// matching a fixed schema, with deterministic validation.
type Constraint struct{}

func NewConstraint() *Constraint { return &Constraint{} }

func (s *Constraint) Config() models.ScenarioConfig {
	return models.ScenarioConfig{
		ID:           "constraint/json_schema",
		Family:       models.FamilyConstraint,
		Name:         "JSON Schema Conformance",
		Description:  "Produce a valid JSON object matching a given schema. Scored by pass rate, retries, and token cost.",
		BudgetTokens: 5000,
		BudgetTurns:  10,
	}
}

func (s *Constraint) Setup(_ int) []models.Message {
	return []models.Message{{
		Role: models.RoleSystem,
		Content: "You are a data generation assistant. When asked to produce " +
			"JSON matching a schema, output ONLY valid JSON with no " +
			"surrounding text, markdown, or explanation.",
	}}
}

func (s *Constraint) Tools() []models.ToolSchema { return nil }

func (s *Constraint) HandleToolCall(call models.ToolCallRequest) models.ToolCallResult {
	return models.ToolCallResult{
		CallID:  call.ID,
		Name:    call.Name,
		Result:  "Error: No tools available.",
		IsError: true,
	}
}

func (s *Constraint) CheckTermination(messages []models.Message, _ int, _ int) bool {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleAssistant {
			valid, _ := validateJSONSchema(messages[i].Content, personSchema)
			return valid
		}
	}
	return false
}

func (s *Constraint) Grade(result *models.ScenarioResult) map[string]float64 {
	attempts := 0
	passed := false
	firstPass := false

	for _, msg := range result.Messages {
		if msg.Role != models.RoleAssistant {
			continue
		}
		attempts++
		valid, _ := validateJSONSchema(msg.Content, personSchema)
		if valid {
			passed = true
		}
		if attempts == 1 {
			firstPass = valid
		}
	}

	recovery := 0.0
	if passed && !firstPass && attempts > 1 {
		recovery = 1.0
	}
	efficiency := 1.0 - float64(result.TotalTokens)/2000.0
	if efficiency < 0 {
		efficiency = 0
	}

	boolMetric := func(b bool) float64 {
		if b {
			return 1.0
		}
		return 0.0
	}
	return map[string]float64{
		"task_success":       boolMetric(passed),
		"pass_rate":          boolMetric(passed),
		"first_attempt_pass": boolMetric(firstPass),
		"recovery_rate":      recovery,
		"attempts":           float64(attempts),
		"efficiency":         efficiency,
	}
}

func (s *Constraint) ScriptedPolicy() scenario.ScriptedPolicy {
	return &constraintPolicy{}
}
