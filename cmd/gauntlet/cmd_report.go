package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/reporting"
)

func newReportCommand() *cobra.Command {
	var (
		runID   string
		runsDir string
		formats string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate report artifacts from an existing scorecard",
		RunE: func(cmd *cobra.Command, args []string) error {
			runDir := filepath.Join(runsDir, runID)
			card, err := reporting.LoadScorecard(runDir)
			if err != nil {
				return err
			}

			for _, format := range strings.Split(formats, ",") {
				switch strings.TrimSpace(format) {
				case "json":
					err = reporting.WriteJSON(card, filepath.Join(runDir, "scorecard.json"))
				case "csv":
					err = reporting.WriteCSV(card, filepath.Join(runDir, "scorecard.csv"))
				case "md":
					err = reporting.WriteMarkdown(card, filepath.Join(runDir, "report.md"))
				case "junit":
					err = reporting.WriteJUnitXML(card, filepath.Join(runDir, "junit.xml"))
				case "":
					continue
				default:
					return fmt.Errorf("unknown report format %q (want md, csv, json, or junit)", format)
				}
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reports written to %s\n", runDir)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), reporting.FormatSummary(card))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to report on")
	cmd.Flags().StringVar(&runsDir, "runs-dir", config.Default().RunsDir, "Base runs directory")
	cmd.Flags().StringVar(&formats, "formats", "md,csv,json", "Comma-separated formats to generate (md, csv, json, junit)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}
