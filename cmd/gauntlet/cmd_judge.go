package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/promptgauntlet/gauntlet/internal/adapters"
	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/judges"
	"github.com/promptgauntlet/gauntlet/internal/models"
	"github.com/promptgauntlet/gauntlet/internal/trace"
)

func newJudgeCommand() *cobra.Command {
	var (
		configPath string
		rubricPath string
	)

	cmd := &cobra.Command{
		Use:   "judge [trace-file]",
		Short: "Score a trace's final answer against a rubric",
		Long: `Judge extracts the final assistant message from a trace file and scores
it with the judge ensemble from the config. Without a rubric model or
embedding model configured, all members run their deterministic fallbacks,
so judging works offline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			rubric, err := loadRubric(rubricPath)
			if err != nil {
				return err
			}

			ensemble, err := ensembleFromConfig(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			output, err := finalAssistantText(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return fmt.Errorf("trace %s has no final assistant message", args[0])
			}

			score, err := ensemble.Score(cmd.Context(), output, rubric)
			if err != nil {
				return fmt.Errorf("judging trace: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ensemble score: %.4f\n", score.Score)
			fmt.Fprintf(out, "Rationale: %s\n", score.Rationale)
			if perJudge, ok := score.Metadata["per_judge"].(map[string]any); ok {
				names := make([]string, 0, len(perJudge))
				for name := range perJudge {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Per-judge scores:")
				for _, name := range names {
					fmt.Fprintf(out, "  %-12s %.4f\n", name, perJudge[name])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config path")
	cmd.Flags().StringVar(&rubricPath, "rubric", "", "Rubric YAML file")
	_ = cmd.MarkFlagRequired("rubric")

	return cmd
}

func loadRubric(path string) (judges.Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric file: %w", err)
	}
	var rubric judges.Rubric
	if err := yaml.Unmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("parsing rubric file %s: %w", path, err)
	}
	return rubric, nil
}

// ensembleFromConfig builds the standard ensemble from the judges section
// of the config. Empty model names leave the members on their
// deterministic fallbacks; an embedder that cannot be constructed (no API
// key offline) degrades to the embedding judge's lexical fallback.
func ensembleFromConfig(cfg *config.Config, errOut io.Writer) (*judges.Ensemble, error) {
	var client judges.Completer
	if name := cfg.Judges.RubricModel; name != "" {
		c, err := adapters.New(name, adapters.Options{
			BaseURL:   cfg.Model.BaseURL,
			APIKeyEnv: cfg.Model.APIKeyEnv,
			MaxTokens: cfg.Model.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("building rubric judge adapter: %w", err)
		}
		client = c
	}

	var embedder judges.Embedder
	if name := cfg.Judges.EmbeddingModel; name != "" {
		e, err := adapters.NewOpenAIEmbedder(name, adapters.Options{
			BaseURL:   cfg.Model.BaseURL,
			APIKeyEnv: cfg.Model.APIKeyEnv,
		})
		if err != nil {
			fmt.Fprintf(errOut, "Warning: embedding judge using lexical fallback: %v\n", err)
		} else {
			embedder = e
		}
	}

	return judges.StandardEnsemble(client, embedder, cfg.Judges.EnsembleWeights, cfg.Judges.DisagreementPenalty), nil
}

func finalAssistantText(path string) (string, error) {
	messages, err := trace.NewReader(path).ExtractMessages()
	if err != nil {
		return "", err
	}
	result := models.ScenarioResult{Messages: messages}
	return result.FinalAssistantText(), nil
}
