package catalog

import (
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/judges"
	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
)

// errorHandlingRubric is the hidden target for the convergence scenario.
var errorHandlingRubric = judges.Rubric{
	"description": "Design a comprehensive error handling system",
	"required_invariants": []string{
		"input validation",
		"exception hierarchy",
		"logging",
		"graceful degradation",
		"user-friendly error messages",
	},
	"bonus_concepts": []string{
		"circuit breaker",
		"retry logic",
		"exponential backoff",
		"correlation id",
		"structured logging",
		"fallback",
	},
	"min_invariants_for_pass": 4,
	"target_keywords": []string{
		"validation",
		"exception",
		"log",
		"degrad",
		"error message",
		"retry",
		"circuit",
		"fallback",
	},
}

// countInvariants reports how many required invariants appear in the
// text. An invariant matches when all of its words appear, or any word
// longer than three characters does.
func countInvariants(text string, rubric judges.Rubric) (matched, total int) {
	textLower := strings.ToLower(text)
	required, _ := rubric["required_invariants"].([]string)
	for _, inv := range required {
		words := strings.Fields(strings.ToLower(inv))
		all := true
		partial := false
		for _, w := range words {
			if !strings.Contains(textLower, w) {
				all = false
			} else if len(w) > 3 {
				partial = true
			}
		}
		if all || partial {
			matched++
		}
	}
	return matched, len(required)
}

func keywordCoverage(text string, rubric judges.Rubric) float64 {
	textLower := strings.ToLower(text)
	keywords, _ := rubric["target_keywords"].([]string)
	if len(keywords) == 0 {
		return 1.0
	}
	found := 0
	for _, kw := range keywords {
		if strings.Contains(textLower, kw) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}

func bonusCoverage(text string, rubric judges.Rubric) float64 {
	textLower := strings.ToLower(text)
	bonus, _ := rubric["bonus_concepts"].([]string)
	if len(bonus) == 0 {
		return 0.0
	}
	found := 0
	for _, b := range bonus {
		if strings.Contains(textLower, strings.ToLower(b)) {
			found++
		}
	}
	return float64(found) / float64(len(bonus))
}

// convergencePolicy drives three refinement rounds toward the hidden
// rubric, then stops.
type convergencePolicy struct{}

func (p *convergencePolicy) NextMessage(_ []models.Message, turn int, _ scenario.Scenario) (string, bool) {
	switch turn {
	case 0:
		return "Describe a comprehensive error handling system for a " +
			"production web application. Include all major components " +
			"and best practices.", true
	case 1:
		return "Good start. Now expand on each point: specifically address " +
			"input validation strategies, exception hierarchy design, " +
			"and logging architecture with structured formats.", true
	case 2:
		return "Almost there. Add details about: graceful degradation " +
			"patterns, circuit breakers for external services, " +
			"retry logic with exponential backoff, and how to " +
			"generate user-friendly error messages while hiding " +
			"internal details. Also mention correlation IDs for " +
			"request tracing.", true
	default:
		return "", false
	}
}

// Convergence is the hidden-target scenario: iteratively refine an open
// design answer toward a rubric with required invariants and bonus
// concepts.
type Convergence struct {
	rubric judges.Rubric
}

func NewConvergence() *Convergence {
	return &Convergence{rubric: errorHandlingRubric}
}

func (s *Convergence) Config() models.ScenarioConfig {
	return models.ScenarioConfig{
		ID:           "convergence/error_handling",
		Family:       models.FamilyConvergence,
		Name:         "Error Handling System Design",
		Description:  "Converge on a comprehensive error handling system design through iterative refinement. Evaluated against a rubric with required invariants and bonus concepts.",
		BudgetTokens: 8000,
		BudgetTurns:  10,
	}
}

func (s *Convergence) Setup(_ int) []models.Message {
	return []models.Message{{
		Role: models.RoleSystem,
		Content: "You are a software architecture expert. When asked about " +
			"system design topics, provide comprehensive, detailed " +
			"responses covering all important aspects. Build on " +
			"feedback to converge toward a complete solution.",
	}}
}

func (s *Convergence) Tools() []models.ToolSchema { return nil }

func (s *Convergence) HandleToolCall(call models.ToolCallRequest) models.ToolCallResult {
	return models.ToolCallResult{
		CallID:  call.ID,
		Name:    call.Name,
		Result:  "Error: No tools available.",
		IsError: true,
	}
}

func (s *Convergence) CheckTermination(messages []models.Message, _ int, _ int) bool {
	userMsgs := 0
	for _, m := range messages {
		if m.Role == models.RoleUser {
			userMsgs++
		}
	}
	return userMsgs >= 4
}

func (s *Convergence) Grade(result *models.ScenarioResult) map[string]float64 {
	bestText := ""
	bestScore := -1.0
	var firstScore float64
	assistantSeen := 0

	for _, msg := range result.Messages {
		if msg.Role != models.RoleAssistant {
			continue
		}
		matched, total := countInvariants(msg.Content, s.rubric)
		score := 0.0
		if total > 0 {
			score = float64(matched) / float64(total)
		}
		if assistantSeen == 0 {
			firstScore = score
		}
		assistantSeen++
		if score >= bestScore {
			bestScore = score
			bestText = msg.Content
		}
	}

	if bestText == "" {
		return map[string]float64{
			"task_success":       0.0,
			"invariant_coverage": 0.0,
			"keyword_coverage":   0.0,
			"bonus_coverage":     0.0,
			"convergence_rate":   0.0,
			"efficiency":         0.0,
		}
	}

	matched, total := countInvariants(bestText, s.rubric)
	invariantCoverage := 0.0
	if total > 0 {
		invariantCoverage = float64(matched) / float64(total)
	}

	convergenceRate := 0.0
	if assistantSeen >= 2 && bestScore > firstScore {
		convergenceRate = bestScore - firstScore
	}

	minPass, _ := s.rubric["min_invariants_for_pass"].(int)
	if minPass == 0 {
		minPass = 4
	}
	taskSuccess := 0.0
	if matched >= minPass {
		taskSuccess = 1.0
	}

	efficiency := 1.0 - float64(result.TotalTokens)/4000.0
	if efficiency < 0 {
		efficiency = 0
	}

	return map[string]float64{
		"task_success":       taskSuccess,
		"invariant_coverage": invariantCoverage,
		"keyword_coverage":   keywordCoverage(bestText, s.rubric),
		"bonus_coverage":     bonusCoverage(bestText, s.rubric),
		"convergence_rate":   convergenceRate,
		"efficiency":         efficiency,
		"invariants_matched": float64(matched),
		"invariants_total":   float64(total),
	}
}

func (s *Convergence) ScriptedPolicy() scenario.ScriptedPolicy {
	return &convergencePolicy{}
}

func (s *Convergence) HumanBrief() string {
	required, _ := s.rubric["required_invariants"].([]string)
	bonus, _ := s.rubric["bonus_concepts"].([]string)
	return "OBJECTIVE: Get the model to produce a short design document for a " +
		"comprehensive error-handling system (e.g. for a web app).\n\n" +
		"REQUIRED (must cover at least 4 of these): " + strings.Join(required, ", ") + ".\n\n" +
		"BONUS (improves score): " + strings.Join(bonus, ", ") + ".\n\n" +
		"HOW: Describe the task in your first message (e.g. 'Describe a comprehensive " +
		"error handling system...'). If the first response is thin, follow up with " +
		"'Expand on X' or 'Add details about Y' until the output covers enough of the " +
		"required concepts. Success = at least 4 required invariants clearly present " +
		"in the model's final output."
}
