package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptgauntlet/gauntlet/internal/compare"
	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/reporting"
)

func newCompareCommand() *cobra.Command {
	var (
		baseRun      string
		candidateRun string
		runsDir      string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the scorecards of two runs",
		Long: `Compare diffs two completed runs scenario by scenario: metric medians,
per-scenario improvement, and an overall improvement score. Use it to
judge whether a model or prompting change actually helped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := reporting.LoadScorecard(filepath.Join(runsDir, baseRun))
			if err != nil {
				return fmt.Errorf("loading base run: %w", err)
			}
			candidate, err := reporting.LoadScorecard(filepath.Join(runsDir, candidateRun))
			if err != nil {
				return fmt.Errorf("loading candidate run: %w", err)
			}

			result := compare.Scorecards(base, candidate)
			fmt.Fprint(cmd.OutOrStdout(), result.Format())
			return nil
		},
	}

	cmd.Flags().StringVar(&baseRun, "base", "", "Base run ID")
	cmd.Flags().StringVar(&candidateRun, "candidate", "", "Candidate run ID")
	cmd.Flags().StringVar(&runsDir, "runs-dir", config.Default().RunsDir, "Base runs directory")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("candidate")

	return cmd
}
