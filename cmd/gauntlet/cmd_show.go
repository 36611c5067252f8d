package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptgauntlet/gauntlet/internal/config"
	"github.com/promptgauntlet/gauntlet/internal/transcript"
)

func newShowCommand() *cobra.Command {
	var (
		runID   string
		runsDir string
	)

	cmd := &cobra.Command{
		Use:   "show [trace-file]",
		Short: "Render a recorded trace as a readable transcript",
		Long: `Show formats a trace's JSONL events as a conversation transcript with
metadata and scores. Pass a trace file directly, or --run to render every
trace in a run directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				out, err := transcript.Render(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			if runID == "" {
				return fmt.Errorf("pass a trace file or --run")
			}

			runDir := filepath.Join(runsDir, runID)
			entries, err := os.ReadDir(runDir)
			if err != nil {
				return fmt.Errorf("reading run directory: %w", err)
			}
			var paths []string
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
					paths = append(paths, filepath.Join(runDir, e.Name()))
				}
			}
			if len(paths) == 0 {
				return fmt.Errorf("no trace files in %s", runDir)
			}
			sort.Strings(paths)

			for _, path := range paths {
				out, err := transcript.Render(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "=== %s ===\n%s\n", filepath.Base(path), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID whose traces to render")
	cmd.Flags().StringVar(&runsDir, "runs-dir", config.Default().RunsDir, "Base runs directory")

	return cmd
}
