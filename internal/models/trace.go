package models

import "time"

// TraceEventType identifies the kind of trace event.
type TraceEventType string

const (
	TraceSystemSetup      TraceEventType = "system_setup"
	TraceUserMessage      TraceEventType = "user_message"
	TraceAssistantMessage TraceEventType = "assistant_message"
	TraceToolCall         TraceEventType = "tool_call"
	TraceToolResult       TraceEventType = "tool_result"
	TraceMetadata         TraceEventType = "metadata"
	TraceScore            TraceEventType = "score"
)

// TraceEvent is one line in a run's JSONL trace file. Events are written in
// strict chronological order; the trace is the sole source of truth for
// reproducing a run.
type TraceEvent struct {
	Type      TraceEventType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Usage     *Usage         `json:"usage,omitempty"`
}

// NewTraceEvent creates an event stamped with the current UTC time.
func NewTraceEvent(t TraceEventType, data map[string]any) TraceEvent {
	return TraceEvent{
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
