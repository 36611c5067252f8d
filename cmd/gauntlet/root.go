package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gauntlet",
		Short: "PromptGauntlet - benchmark harness for prompting strategies",
		Long: `PromptGauntlet runs scripted or human-driven conversations against a
model adapter, records every run as a replayable trace, and grades the
results with deterministic checks and judge ensembles.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newHumanCommand())
	cmd.AddCommand(newGradeCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newJudgeCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
