package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/runlab"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of runlab",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("runlab version %s\n", strings.TrimSpace(runlab.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
