// Package trace records scenario runs as append-only JSONL files and
// reads them back for replay and re-grading.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// Writer appends trace events to a JSONL file, one event per line.
// Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewWriter opens (or creates) the trace file at path, creating parent
// directories as needed. Events are appended so an interrupted run's
// partial trace survives.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	return &Writer{file: f, enc: json.NewEncoder(f)}, nil
}

// WriteEvent appends a single event.
func (w *Writer) WriteEvent(event models.TraceEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(event); err != nil {
		return fmt.Errorf("encoding trace event: %w", err)
	}
	return nil
}

// WriteMessage records a conversation message, mapping its role to the
// corresponding event type. Usage may be nil for messages with no token
// cost attached.
func (w *Writer) WriteMessage(msg models.Message, usage *models.Usage) error {
	var eventType models.TraceEventType
	switch msg.Role {
	case models.RoleSystem:
		eventType = models.TraceSystemSetup
	case models.RoleUser:
		eventType = models.TraceUserMessage
	case models.RoleAssistant:
		eventType = models.TraceAssistantMessage
	case models.RoleTool:
		eventType = models.TraceToolResult
	default:
		eventType = models.TraceMetadata
	}

	data, err := messageData(msg)
	if err != nil {
		return err
	}
	event := models.NewTraceEvent(eventType, data)
	event.Usage = usage
	return w.WriteEvent(event)
}

// WriteMetadata records run metadata such as scenario ID, seed, and model.
func (w *Writer) WriteMetadata(data map[string]any) error {
	return w.WriteEvent(models.NewTraceEvent(models.TraceMetadata, data))
}

// WriteScore records final metrics. The last score event in a trace wins
// on read, so re-grades can append without rewriting.
func (w *Writer) WriteScore(metrics map[string]float64) error {
	return w.WriteEvent(models.NewTraceEvent(models.TraceScore, map[string]any{"metrics": metrics}))
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// messageData round-trips a message through JSON into the generic event
// payload shape.
func messageData(msg models.Message) (map[string]any, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshaling message: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshaling message: %w", err)
	}
	return data, nil
}
