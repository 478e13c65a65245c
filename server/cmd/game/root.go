package main

import "github.com/spf13/cobra"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rpgserver",
		Short:        "Game session server: command dispatch and scene synchronization",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "config.toml", "path to the config file")

	rootCmd.AddCommand(
		newServeCmd(),
		newVersionCmd(),
		newDataCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version + "\n"))
			return err
		},
	}
}
