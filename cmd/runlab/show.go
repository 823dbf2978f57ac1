package main

import (
	"github.com/aretw0/runlab/internal/cli"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name-or-id>",
	Short: "Show the details of one run",
	Long:  `Shows the manifest of a run, resolved by run id or experiment name (most recent launch wins).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		return cli.ShowRun(cmd.Context(), args[0], cli.RunsOptions{
			ConfigPath: configPath,
			Debug:      debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
