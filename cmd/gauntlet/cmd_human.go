package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptgauntlet/gauntlet/internal/catalog"
	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/runner"
)

func newHumanCommand() *cobra.Command {
	var (
		scenarioID string
		model      string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "human",
		Short: "Run a single scenario in human-in-the-loop mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg.Apply(config.Overrides{Model: model})

			registry, err := catalog.DefaultRegistry()
			if err != nil {
				return fmt.Errorf("building scenario registry: %w", err)
			}

			r := runner.New(cfg, registry, runner.WithOutput(cmd.OutOrStdout()))
			return r.RunHuman(cmd.Context(), scenarioID)
		},
	}

	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", "", "Scenario ID")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model adapter name (default: mock)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config path")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}
