/*
Joynet hosts and joins multiplayer game sessions and keeps track of
the content this machine can offer to them.
*/
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "joynet",
		Short:         "Host and join multiplayer game sessions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return LoadConfig(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "configuration file")

	rootCmd.AddCommand(
		newServeCmd(),
		newJoinCmd(),
		newContentCmd(),
	)

	return rootCmd
}
