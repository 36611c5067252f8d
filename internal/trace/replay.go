package trace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
)

// ReplaySingleTrace re-grades one trace file without calling any model.
// The scenario is re-instantiated from the registry and its Setup is
// replayed with the recorded seed so grading sees the same ground truth.
// An unknown scenario ID degrades to an ungraded result rather than
// failing the whole replay.
func ReplaySingleTrace(tracePath string, registry *scenario.Registry) (*models.ScenarioResult, error) {
	reader := NewReader(tracePath)

	metadata, err := reader.ExtractMetadata()
	if err != nil {
		return nil, fmt.Errorf("extracting metadata: %w", err)
	}
	messages, err := reader.ExtractMessages()
	if err != nil {
		return nil, fmt.Errorf("extracting messages: %w", err)
	}
	totalTokens, err := reader.TotalTokens()
	if err != nil {
		return nil, fmt.Errorf("summing tokens: %w", err)
	}

	scenarioID := "unknown"
	if id, ok := metadata["scenario_id"].(string); ok && id != "" {
		scenarioID = id
	}
	seed := 0
	if s, ok := metadata["seed"].(float64); ok {
		seed = int(s)
	}

	result := &models.ScenarioResult{
		ScenarioID:  scenarioID,
		Seed:        seed,
		Messages:    messages,
		TotalTokens: totalTokens,
		TotalTurns:  countUserTurns(messages),
		Metrics:     map[string]float64{},
		Metadata:    metadata,
	}

	s, err := registry.Get(scenarioID)
	if err != nil {
		slog.Warn("scenario not found, trace left ungraded", "scenario_id", scenarioID, "trace", tracePath)
		return result, nil
	}

	s.Setup(seed)
	result.Metrics = s.Grade(result)
	result.Success = result.Metrics["task_success"] > 0.5
	return result, nil
}

// ReplayRun re-grades every trace file under runDir, in sorted filename
// order. It returns the re-graded results and the model name recorded in
// the first trace's metadata.
func ReplayRun(runDir string, registry *scenario.Registry) ([]*models.ScenarioResult, string, error) {
	if _, err := os.Stat(runDir); err != nil {
		return nil, "", fmt.Errorf("run directory: %w", err)
	}

	var traceFiles []string
	err := filepath.WalkDir(runDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".jsonl" {
			traceFiles = append(traceFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("scanning run directory: %w", err)
	}
	if len(traceFiles) == 0 {
		return nil, "", fmt.Errorf("no trace files found in %s", runDir)
	}
	sort.Strings(traceFiles)

	results := make([]*models.ScenarioResult, 0, len(traceFiles))
	for _, tf := range traceFiles {
		result, err := ReplaySingleTrace(tf, registry)
		if err != nil {
			return nil, "", fmt.Errorf("replaying %s: %w", filepath.Base(tf), err)
		}
		results = append(results, result)
	}

	model := "unknown"
	if meta, err := NewReader(traceFiles[0]).ExtractMetadata(); err == nil {
		if m, ok := meta["model"].(string); ok && m != "" {
			model = m
		}
	}
	return results, model, nil
}

func countUserTurns(messages []models.Message) int {
	n := 0
	for _, m := range messages {
		if m.Role == models.RoleUser {
			n++
		}
	}
	return n
}
