package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rigmate/rigmate"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rigmate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rigmate version %s\n", rigmate.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
