package main

import (
	"github.com/aretw0/runlab/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Long:  `Lists all runs recorded in the runs index, newest first, with liveness of the recorded pid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		return cli.ListRuns(cmd.Context(), cli.RunsOptions{
			ConfigPath: configPath,
			Debug:      debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
