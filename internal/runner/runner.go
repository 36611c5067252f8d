// Package runner drives scenario conversations against a model adapter,
// records traces, and produces run artifacts.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/promptgauntlet/gauntlet/internal/adapters"
	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/prompter"
	"github.com/promptgauntlet/gauntlet/internal/reporting"
	"github.com/promptgauntlet/gauntlet/internal/scenario"
	"github.com/promptgauntlet/gauntlet/internal/scoring"
	"github.com/promptgauntlet/gauntlet/internal/trace"
)

// Runner executes scenarios per the active configuration.
type Runner struct {
	cfg      *config.Config
	registry *scenario.Registry
	out      io.Writer
}

type Option func(*Runner)

// WithOutput redirects progress output, used by tests.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

func New(cfg *config.Config, registry *scenario.Registry, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, registry: registry, out: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScenario executes one scenario with one seed. Budgets are checked
// between turns only, so a turn in flight always completes. Tool failures
// are folded into the conversation as error results; adapter failures
// abort the run and propagate.
func (r *Runner) RunScenario(
	ctx context.Context,
	s scenario.Scenario,
	client adapters.Client,
	p prompter.Prompter,
	seed int,
	tw *trace.Writer,
) (*models.ScenarioResult, error) {
	messages := s.Setup(seed)
	tools := s.Tools()
	totalTokens := 0
	turn := 0

	if tw != nil {
		if err := tw.WriteMetadata(map[string]any{
			"scenario_id":     s.Config().ID,
			"seed":            seed,
			"budget_tokens":   r.cfg.Budget.Tokens,
			"budget_turns":    r.cfg.Budget.Turns,
			"model":           client.Name(),
			"timestamp_start": time.Now().UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return nil, fmt.Errorf("writing run metadata: %w", err)
		}
		for _, msg := range messages {
			if err := tw.WriteMessage(msg, nil); err != nil {
				return nil, fmt.Errorf("tracing setup message: %w", err)
			}
		}
	}

	for turn < r.cfg.Budget.Turns && totalTokens < r.cfg.Budget.Tokens {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run canceled: %w", err)
		}

		userText, ok, err := p.NextMessage(messages, turn, s)
		if err != nil {
			return nil, fmt.Errorf("prompter: %w", err)
		}
		if !ok {
			break
		}

		userMsg := models.Message{Role: models.RoleUser, Content: userText}
		messages = append(messages, userMsg)
		if err := r.traceMessage(tw, userMsg, nil); err != nil {
			return nil, err
		}

		resp, err := client.Complete(ctx, messages, tools, seed, r.cfg.Model.Temperature)
		if err != nil {
			return nil, fmt.Errorf("model completion on turn %d: %w", turn, err)
		}
		totalTokens += resp.Usage.TotalTokens()

		assistantMsg := models.Message{
			Role:      models.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}
		messages = append(messages, assistantMsg)
		if err := r.traceMessage(tw, assistantMsg, &resp.Usage); err != nil {
			return nil, err
		}

		for _, tc := range resp.ToolCalls {
			result := executeToolCall(s, tc)
			toolMsg := models.Message{
				Role:       models.RoleTool,
				Content:    result.Result,
				ToolCallID: result.CallID,
				Name:       result.Name,
			}
			messages = append(messages, toolMsg)
			if err := r.traceMessage(tw, toolMsg, nil); err != nil {
				return nil, err
			}
		}

		turn++
		if s.CheckTermination(messages, turn, totalTokens) {
			break
		}
	}

	result := &models.ScenarioResult{
		ScenarioID:  s.Config().ID,
		Seed:        seed,
		Messages:    messages,
		TotalTokens: totalTokens,
		TotalTurns:  turn,
	}
	result.Metrics = s.Grade(result)
	result.Success = result.Metrics["task_success"] > 0.5

	if tw != nil {
		if err := tw.WriteMetadata(map[string]any{
			"timestamp_end": time.Now().UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return nil, fmt.Errorf("writing end metadata: %w", err)
		}
		if err := tw.WriteScore(result.Metrics); err != nil {
			return nil, fmt.Errorf("writing score: %w", err)
		}
	}
	return result, nil
}

// executeToolCall shields the run loop from scenario tool panics; a panic
// becomes an in-band error result like any other tool failure.
func executeToolCall(s scenario.Scenario, tc models.ToolCallRequest) (result models.ToolCallResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = models.ToolCallResult{
				CallID:  tc.ID,
				Name:    tc.Name,
				Result:  fmt.Sprintf("Error: %v", rec),
				IsError: true,
			}
		}
	}()
	return s.HandleToolCall(tc)
}

func (r *Runner) traceMessage(tw *trace.Writer, msg models.Message, usage *models.Usage) error {
	if tw == nil {
		return nil
	}
	if err := tw.WriteMessage(msg, usage); err != nil {
		return fmt.Errorf("tracing %s message: %w", msg.Role, err)
	}
	return nil
}

// RunBatch executes all configured scenarios across all seeds, writes the
// scorecard and reports under the run directory, and returns the run ID.
// A scenario/seed whose adapter fails is skipped with a warning so the
// rest of the batch still completes.
func (r *Runner) RunBatch(ctx context.Context) (string, error) {
	runID := fmt.Sprintf("run_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(r.cfg.RunsDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}

	scenarioIDs, err := r.registry.Resolve(r.cfg.Scenarios)
	if err != nil {
		return "", fmt.Errorf("resolving scenarios: %w", err)
	}
	if len(scenarioIDs) == 0 {
		return "", fmt.Errorf("no scenarios matched patterns %v", r.cfg.Scenarios)
	}

	client, err := adapters.New(r.cfg.Model.Name, adapters.Options{
		BaseURL:   r.cfg.Model.BaseURL,
		APIKeyEnv: r.cfg.Model.APIKeyEnv,
		MaxTokens: r.cfg.Model.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("creating adapter: %w", err)
	}

	fmt.Fprintf(r.out, "Run: %s\n", runID)
	fmt.Fprintf(r.out, "Model: %s | Seeds: %d | Scenarios: %d\n\n",
		r.cfg.Model.Name, r.cfg.Seeds, len(scenarioIDs))

	var results []*models.ScenarioResult
	if r.cfg.Parallel > 1 {
		results, err = r.runParallel(ctx, scenarioIDs, client, runDir)
	} else {
		results, err = r.runSequential(ctx, scenarioIDs, client, runDir)
	}
	if err != nil {
		return "", err
	}

	scorecard := scoring.ComputeScorecard(results, runID, r.cfg.Model.Name)
	if err := reporting.Generate(scorecard, runDir); err != nil {
		return "", fmt.Errorf("generating reports: %w", err)
	}

	fmt.Fprintf(r.out, "\nRun complete: %s\nResults in: %s\n", runID, runDir)
	return runID, nil
}

func (r *Runner) runSequential(ctx context.Context, scenarioIDs []string, client adapters.Client, runDir string) ([]*models.ScenarioResult, error) {
	var results []*models.ScenarioResult
	for _, sid := range scenarioIDs {
		for seed := 0; seed < r.cfg.Seeds; seed++ {
			result, err := r.runOne(ctx, sid, seed, client, runDir)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				slog.Warn("scenario run failed, skipping", "scenario_id", sid, "seed", seed, "error", err)
				continue
			}
			results = append(results, result)
			fmt.Fprintf(r.out, "  %s seed=%d success=%t tokens=%d turns=%d\n",
				sid, seed, result.Success, result.TotalTokens, result.TotalTurns)
		}
	}
	return results, nil
}

func (r *Runner) runParallel(ctx context.Context, scenarioIDs []string, client adapters.Client, runDir string) ([]*models.ScenarioResult, error) {
	var (
		mu      sync.Mutex
		results []*models.ScenarioResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)

	for _, sid := range scenarioIDs {
		for seed := 0; seed < r.cfg.Seeds; seed++ {
			sid, seed := sid, seed
			g.Go(func() error {
				result, err := r.runOne(gctx, sid, seed, client, runDir)
				if err != nil {
					if gctx.Err() != nil {
						return err
					}
					slog.Warn("scenario run failed, skipping", "scenario_id", sid, "seed", seed, "error", err)
					return nil
				}
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic result order regardless of scheduling.
	sort.Slice(results, func(i, j int) bool {
		if results[i].ScenarioID != results[j].ScenarioID {
			return results[i].ScenarioID < results[j].ScenarioID
		}
		return results[i].Seed < results[j].Seed
	})
	return results, nil
}

// runOne executes a single scenario/seed with its own trace file and a
// fresh scenario instance, so parallel runs never share state.
func (r *Runner) runOne(ctx context.Context, sid string, seed int, client adapters.Client, runDir string) (*models.ScenarioResult, error) {
	s, err := r.registry.Get(sid)
	if err != nil {
		return nil, fmt.Errorf("instantiating scenario: %w", err)
	}

	tracePath := filepath.Join(runDir, fmt.Sprintf("%s_seed%d.jsonl", sanitizeID(sid), seed))
	tw, err := trace.NewWriter(tracePath)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer tw.Close()

	return r.RunScenario(ctx, s, client, prompter.NewScripted(), seed, tw)
}

// RunHuman executes one scenario interactively with a human supplying the
// user turns, recording the trace like any scripted run.
func (r *Runner) RunHuman(ctx context.Context, scenarioID string) error {
	s, err := r.registry.Get(scenarioID)
	if err != nil {
		return fmt.Errorf("instantiating scenario: %w", err)
	}

	client, err := adapters.New(r.cfg.Model.Name, adapters.Options{
		BaseURL:   r.cfg.Model.BaseURL,
		APIKeyEnv: r.cfg.Model.APIKeyEnv,
		MaxTokens: r.cfg.Model.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating adapter: %w", err)
	}

	runID := fmt.Sprintf("human_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
	tracePath := filepath.Join(r.cfg.RunsDir, runID, fmt.Sprintf("%s_human.jsonl", sanitizeID(scenarioID)))
	tw, err := trace.NewWriter(tracePath)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer tw.Close()

	cfg := s.Config()
	fmt.Fprintf(r.out, "Interactive Mode: %s\n%s\n", cfg.Name, cfg.Description)
	fmt.Fprintf(r.out, "Budget: %d tokens, %d turns\n\n", r.cfg.Budget.Tokens, r.cfg.Budget.Turns)
	if bp, ok := s.(scenario.BriefProvider); ok {
		if brief := bp.HumanBrief(); brief != "" {
			fmt.Fprintf(r.out, "=== TASK (read before you start) ===\n%s\n\n", brief)
		}
	}

	result, err := r.RunScenario(ctx, s, client, prompter.NewHuman(), 0, tw)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "\nResults:\n")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.out, "  %s: %.4f\n", name, result.Metrics[name])
	}
	fmt.Fprintf(r.out, "\nTrace saved: %s\n", tracePath)
	return nil
}

// sanitizeID makes a scenario ID safe as a filename component.
func sanitizeID(id string) string {
	out := make([]byte, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c == '/' || c == '\\' {
			c = '_'
		}
		out[i] = c
	}
	return string(out)
}
