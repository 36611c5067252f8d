package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/promptgauntlet/gauntlet/internal/catalog"
	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/reporting"
	"github.com/promptgauntlet/gauntlet/internal/scoring"
	"github.com/promptgauntlet/gauntlet/internal/spinner"
	"github.com/promptgauntlet/gauntlet/internal/trace"
)

func newGradeCommand() *cobra.Command {
	var (
		runID   string
		runsDir string
	)

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Re-grade all traces in a run directory",
		Long: `Re-grade replays each trace in a run directory through the current
grading logic without calling any model, then rewrites the scorecard and
reports. Use it after changing graders to re-score old runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := catalog.DefaultRegistry()
			if err != nil {
				return fmt.Errorf("building scenario registry: %w", err)
			}

			runDir := filepath.Join(runsDir, runID)
			stop := func() {}
			if term.IsTerminal(int(os.Stderr.Fd())) {
				stop = spinner.Start(os.Stderr, "Replaying traces...")
			}
			results, model, err := trace.ReplayRun(runDir, registry)
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Re-graded %d traces from %s\n", len(results), runDir)

			scorecard := scoring.ComputeScorecard(results, runID, model)
			if err := reporting.Generate(scorecard, runDir); err != nil {
				return fmt.Errorf("generating reports: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scorecard written: %s\n", filepath.Join(runDir, "scorecard.json"))
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), reporting.FormatSummary(scorecard))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to re-grade")
	cmd.Flags().StringVar(&runsDir, "runs-dir", config.Default().RunsDir, "Base runs directory")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}
