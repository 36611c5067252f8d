package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/promptgauntlet/gauntlet/internal/models"
)

// Reader parses a JSONL trace file back into events, messages, metadata,
// and scores.
type Reader struct {
	path string
}

func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadEvents reads every event in file order. Blank lines are skipped; a
// malformed line fails the whole read since a corrupt trace cannot be
// trusted for re-grading.
func (r *Reader) ReadEvents() ([]models.TraceEvent, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	defer f.Close()

	var events []models.TraceEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event models.TraceEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parsing trace line %d: %w", lineNo, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace file: %w", err)
	}
	return events, nil
}

// ExtractMessages rebuilds the conversation from message-bearing events.
func (r *Reader) ExtractMessages() ([]models.Message, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	for _, event := range events {
		switch event.Type {
		case models.TraceSystemSetup, models.TraceUserMessage,
			models.TraceAssistantMessage, models.TraceToolResult:
			msg, err := messageFromData(event.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding %s event: %w", event.Type, err)
			}
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// ExtractMetadata merges all metadata events in order; later keys win.
func (r *Reader) ExtractMetadata() (map[string]any, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	meta := map[string]any{}
	for _, event := range events {
		if event.Type != models.TraceMetadata {
			continue
		}
		for k, v := range event.Data {
			meta[k] = v
		}
	}
	return meta, nil
}

// ExtractScores returns the metrics from the last score event, so a
// re-graded trace supersedes earlier scores.
func (r *Reader) ExtractScores() (map[string]float64, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return nil, err
	}

	scores := map[string]float64{}
	for _, event := range events {
		if event.Type != models.TraceScore {
			continue
		}
		raw, ok := event.Data["metrics"].(map[string]any)
		if !ok {
			continue
		}
		scores = map[string]float64{}
		for k, v := range raw {
			if f, ok := v.(float64); ok {
				scores[k] = f
			}
		}
	}
	return scores, nil
}

// TotalTokens sums token usage across all events.
func (r *Reader) TotalTokens() (int, error) {
	events, err := r.ReadEvents()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, event := range events {
		if event.Usage != nil {
			total += event.Usage.TotalTokens()
		}
	}
	return total, nil
}

func messageFromData(data map[string]any) (models.Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return models.Message{}, fmt.Errorf("marshaling event data: %w", err)
	}
	var msg models.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return models.Message{}, fmt.Errorf("unmarshaling message: %w", err)
	}
	return msg, nil
}
