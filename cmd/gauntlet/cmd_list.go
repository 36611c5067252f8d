package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptgauntlet/gauntlet/internal/catalog"
)

func newListCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := catalog.DefaultRegistry()
			if err != nil {
				return fmt.Errorf("building scenario registry: %w", err)
			}

			infos := registry.List(family)
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
				return nil
			}

			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-15s %s\n", info.ID, info.Family, info.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&family, "family", "f", "", "Filter by task family")
	return cmd
}
