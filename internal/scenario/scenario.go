// Package scenario defines the scenario contract the runner drives and the
// registry that resolves scenario IDs to constructors.
package scenario

import "github.com/promptgauntlet/gauntlet/internal/models"

// Scenario is a self-contained task definition: setup, tools, termination,
// and grading. The runner drives it independently of any specific model.
type Scenario interface {
	// Config returns the scenario configuration.
	Config() models.ScenarioConfig

	// Setup initializes scenario-internal state for a seed and returns the
	// initial messages, typically one system message.
	Setup(seed int) []models.Message

	// Tools returns the tool schemas exposed to the model.
	Tools() []models.ToolSchema

	// HandleToolCall executes one tool call. Failures are reported in-band
	// on the result; implementations must not panic.
	HandleToolCall(call models.ToolCallRequest) models.ToolCallResult

	// CheckTermination reports whether the run should stop.
	CheckTermination(messages []models.Message, turn, tokens int) bool

	// Grade computes named metrics from a completed run. Grading must be a
	// pure function of the transcript and the state established by Setup.
	Grade(result *models.ScenarioResult) map[string]float64
}

// ScriptedPolicy produces the next user message in a scripted run.
// ok reports whether the conversation continues; an empty message with
// ok true sends an empty user turn, which lets a tool-calling model keep
// working without new instructions.
type ScriptedPolicy interface {
	NextMessage(messages []models.Message, turn int, s Scenario) (msg string, ok bool)
}

// PolicyProvider is implemented by scenarios that ship their own scripted
// prompter policy. A fresh policy is returned per call so per-run policy
// state is never shared across seeds.
type PolicyProvider interface {
	ScriptedPolicy() ScriptedPolicy
}

// BriefProvider is implemented by scenarios that supply full task
// instructions for human-in-the-loop mode.
type BriefProvider interface {
	HumanBrief() string
}

// Info is lightweight scenario metadata for listing.
type Info struct {
	ID          string            `json:"id"`
	Family      models.TaskFamily `json:"family"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
}
