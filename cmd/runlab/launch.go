package main

import (
	"errors"

	"github.com/aretw0/runlab/internal/cli"
	"github.com/spf13/cobra"
)

// launchCmd represents the launch command
var launchCmd = &cobra.Command{
	Use:   "launch <name> [key=value ...]",
	Short: "Start a training run",
	Long: `Starts the training entry point for the named experiment. Everything after
the name is forwarded to the trainer verbatim as key=value overrides
(e.g. env_name=..., mirror_method=net); runlab does not validate them.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("no arguments supplied: experiment name required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		detach, _ := cmd.Flags().GetBool("detach")

		return cli.Launch(cmd.Context(), cli.LaunchOptions{
			Name:       args[0],
			Params:     args[1:],
			ConfigPath: configPath,
			Detach:     detach,
			Debug:      debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().Bool("detach", false, "Background the trainer (output goes to slurm.out)")
}
