// Package models holds the shared data types for conversations, traces,
// scenario results, and scorecards.
package models

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest is a request from the model to invoke a tool.
type ToolCallRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolCallResult is the outcome of routing a ToolCallRequest through a tool.
// Execution failures are carried in-band via IsError, never as Go errors.
type ToolCallResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// Message is a single entry in a conversation transcript. Transcripts are
// append-only; a Message is never mutated after it has been appended.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	Name       string            `json:"name,omitempty"`
}

// Usage records token consumption for one model completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// TotalTokens returns prompt + completion tokens.
func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// Response is the output of one model adapter completion.
type Response struct {
	Content   string            `json:"content"`
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`
	Usage     Usage             `json:"usage"`
	Model     string            `json:"model"`
	Raw       map[string]any    `json:"raw,omitempty"`
}
