// Package cmd wires the panebot command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"panebot/internal/config"
)

var cfgPath string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "panebot",
		Short:         "Relay terminal session events to chat platforms and replies back into tmux",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")

	root.AddCommand(
		newDispatchCmd(),
		newListenerCmd(),
		newRegistryCmd(),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadStateDir resolves the state root without requiring a valid config
// file; daemon management must work even while the config is broken.
func loadStateDir() string {
	cfg, err := config.NewManager(cfgPath).Parse()
	if err != nil {
		cfg = nil
	}
	return config.StateDir(cfg)
}
