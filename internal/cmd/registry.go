package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"panebot/internal/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain the message-session registry",
	}
	cmd.AddCommand(newRegistryListCmd(), newRegistryPruneCmd())
	return cmd
}

func newRegistryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered message-session mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New(loadStateDir())
			all, err := reg.LoadAllMappings()
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no mappings")
				return nil
			}
			out, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newRegistryPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop mappings older than 24h and corrupt entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New(loadStateDir())
			before, err := reg.LoadAllMappings()
			if err != nil {
				return err
			}
			if err := reg.PruneStale(registry.StaleAfter); err != nil {
				return err
			}
			after, err := reg.LoadAllMappings()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d of %d mappings\n", len(before)-len(after), len(before))
			return nil
		},
	}
}
