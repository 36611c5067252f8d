package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptgauntlet/gauntlet/internal/catalog"
	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/runner"
)

func newRunCommand() *cobra.Command {
	var (
		model        string
		scenarios    []string
		seeds        int
		budgetTokens int
		budgetTurns  int
		configPath   string
		temperature  float64
		parallel     int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of scenarios and produce a scorecard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			overrides := config.Overrides{
				Model:        model,
				Seeds:        seeds,
				BudgetTokens: budgetTokens,
				BudgetTurns:  budgetTurns,
				Scenarios:    scenarios,
				Parallel:     parallel,
			}
			if cmd.Flags().Changed("temperature") {
				overrides.Temperature = &temperature
			}
			cfg.Apply(overrides)

			registry, err := catalog.DefaultRegistry()
			if err != nil {
				return fmt.Errorf("building scenario registry: %w", err)
			}

			r := runner.New(cfg, registry, runner.WithOutput(cmd.OutOrStdout()))
			_, err = r.RunBatch(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model adapter name (default: mock)")
	cmd.Flags().StringSliceVarP(&scenarios, "scenarios", "s", nil, "Scenario IDs or glob patterns (default: all)")
	cmd.Flags().IntVar(&seeds, "seeds", 0, "Number of random seeds")
	cmd.Flags().IntVar(&budgetTokens, "budget-tokens", 0, "Token budget per scenario")
	cmd.Flags().IntVar(&budgetTurns, "budget-turns", 0, "Turn budget per scenario")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config path")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.0, "Model temperature")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Number of concurrent scenario runs")

	return cmd
}
