// Package transcript renders recorded traces as readable conversations
// for debugging runs without grepping raw JSONL.
package transcript

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/trace"
)

// headerKeys are metadata fields shown in the transcript header, in order.
var headerKeys = []string{"scenario_id", "seed", "model", "budget_tokens", "budget_turns"}

// Render reads the JSONL trace at path and formats it as a conversation
// with a metadata header and the recorded scores.
func Render(path string) (string, error) {
	reader := trace.NewReader(path)

	metadata, err := reader.ExtractMetadata()
	if err != nil {
		return "", fmt.Errorf("reading trace metadata: %w", err)
	}
	messages, err := reader.ExtractMessages()
	if err != nil {
		return "", fmt.Errorf("reading trace messages: %w", err)
	}
	scores, err := reader.ExtractScores()
	if err != nil {
		return "", fmt.Errorf("reading trace scores: %w", err)
	}
	totalTokens, err := reader.TotalTokens()
	if err != nil {
		return "", fmt.Errorf("summing trace tokens: %w", err)
	}

	var b strings.Builder
	writeHeader(&b, metadata, totalTokens)
	for _, msg := range messages {
		writeMessage(&b, msg)
	}
	writeScores(&b, scores)
	return b.String(), nil
}

func writeHeader(b *strings.Builder, metadata map[string]any, totalTokens int) {
	shown := map[string]bool{}
	for _, key := range headerKeys {
		if v, ok := metadata[key]; ok {
			fmt.Fprintf(b, "%s: %v\n", key, v)
			shown[key] = true
		}
	}

	rest := make([]string, 0, len(metadata))
	for key := range metadata {
		if !shown[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(b, "%s: %v\n", key, metadata[key])
	}

	fmt.Fprintf(b, "total_tokens: %d\n", totalTokens)
}

func writeMessage(b *strings.Builder, msg models.Message) {
	label := string(msg.Role)
	if msg.Role == models.RoleTool && msg.Name != "" {
		label = fmt.Sprintf("%s %s", msg.Role, msg.Name)
	}
	fmt.Fprintf(b, "\n[%s]\n", label)

	if msg.Content != "" {
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	for _, tc := range msg.ToolCalls {
		argsJSON, _ := json.Marshal(tc.Arguments)
		args := strings.TrimSpace(string(argsJSON))
		fmt.Fprintf(b, "-> %s(%s)\n", tc.Name, args)
	}
}

func writeScores(b *strings.Builder, scores map[string]float64) {
	if len(scores) == 0 {
		return
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("\n--- Scores ---\n")
	for _, name := range names {
		fmt.Fprintf(b, "%s: %.4f\n", name, scores[name])
	}
}
