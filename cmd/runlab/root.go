package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "runlab",
	Short: "Runlab launches and tracks RL training runs",
	Long: `Runlab starts the training entry point for a named experiment, giving each
launch its own timestamped directory under the runs root with a pid file and
a manifest for later inspection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// A trainer that ran but exited nonzero has its exit code passed through.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "runlab.yaml", "Path to the runlab config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
