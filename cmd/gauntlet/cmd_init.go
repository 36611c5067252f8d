package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/promptgauntlet/gauntlet/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		model     string
		seeds     int
		scenarios []string
		runsDir   string
		output    string
		noInput   bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config file",
		Long: `Init writes a starter config.yaml. On a terminal it walks through an
interactive form; with --no-input (or piped stdin) it uses the flag
values directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", output)
				}
			}

			spec := &wizard.ConfigSpec{
				Model:     model,
				Seeds:     seeds,
				Scenarios: scenarios,
				RunsDir:   runsDir,
			}
			if !noInput && term.IsTerminal(int(os.Stdin.Fd())) {
				var err error
				spec, err = wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), model)
				if err != nil {
					return err
				}
			}

			content, err := wizard.GenerateConfigYAML(spec)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing config file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config written: %s\n", output)
			fmt.Fprintf(cmd.OutOrStdout(), "Run a benchmark with: gauntlet run --config %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "mock", "Model adapter name")
	cmd.Flags().IntVar(&seeds, "seeds", 3, "Number of random seeds")
	cmd.Flags().StringSliceVarP(&scenarios, "scenarios", "s", []string{"all"}, "Scenario IDs or glob patterns")
	cmd.Flags().StringVar(&runsDir, "runs-dir", "runs", "Directory for run artifacts")
	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "Output path")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Skip the interactive form and use flag values")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
