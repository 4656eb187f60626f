package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridline-ai/graphflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of graphflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("graphflow version %s\n", graphflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
