package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"panebot/internal/listener"
)

func newListenerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listener",
		Short: "Manage the reply listener daemon",
	}
	cmd.AddCommand(
		newListenerStartCmd(),
		newListenerStopCmd(),
		newListenerStatusCmd(),
		newListenerRunCmd(),
	)
	return cmd
}

func newListenerStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the reply listener as a background daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, already, err := listener.Start(loadStateDir(), cfgPath)
			if err != nil {
				return err
			}
			if already {
				fmt.Fprintf(cmd.OutOrStdout(), "listener already running (pid %d)\n", pid)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "listener started (pid %d)\n", pid)
			}
			return nil
		},
	}
}

func newListenerStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the reply listener daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			wasRunning, err := listener.Stop(loadStateDir())
			if err != nil {
				return err
			}
			if wasRunning {
				fmt.Fprintln(cmd.OutOrStdout(), "listener stopped")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "listener was not running")
			}
			return nil
		},
	}
}

func newListenerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, st := listener.GetStatus(loadStateDir())
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", status)
			if st == nil {
				return nil
			}
			out, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// newListenerRunCmd is the forked child's entry point. Hidden: operators
// use "start", which daemonizes this.
func newListenerRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "run",
		Short:  "Run the poll loop in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listener.NewRunner(loadStateDir(), cfgPath).Run(cmd.Context())
		},
	}
}
