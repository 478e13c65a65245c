package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phuhao00/rpgserver/server/configs"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the server config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an example config file if none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			written, err := configs.CreateExampleConfigFile(path)
			if err != nil {
				return err
			}
			if !written {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote example config to %s; review it before serving\n", path)
			return err
		},
	})
	return cmd
}
