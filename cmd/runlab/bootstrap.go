package main

import (
	"github.com/aretw0/runlab/internal/bootstrap"
	"github.com/aretw0/runlab/internal/cli"
	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Install the physics-simulation dependency",
	Long: `Downloads the simulator's source distribution, caps the build parallelism in
its setup script, installs it, and removes the extracted tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		url, _ := cmd.Flags().GetString("url")
		workDir, _ := cmd.Flags().GetString("workdir")
		keep, _ := cmd.Flags().GetBool("keep")

		return cli.Bootstrap(cmd.Context(), cli.BootstrapOptions{
			URL:     url,
			WorkDir: workDir,
			Keep:    keep,
			Debug:   debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().String("url", bootstrap.DefaultPackageURL, "Source distribution to install")
	bootstrapCmd.Flags().String("workdir", "", "Directory to extract into (default: system temp dir)")
	bootstrapCmd.Flags().Bool("keep", false, "Keep the extracted source tree after install")
}
