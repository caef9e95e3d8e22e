package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rigmate/rigmate/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "rigmate",
	Short: "Rigmate is a conversational PC build assistant",
	Long: `Rigmate answers PC part questions, assembles builds within a budget and
validates price quotes. Conversations are checkpointed per thread, so any
chat can be resumed later or from another replica.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default "+config.DefaultPath+")")
}

// loadConfig reads the configuration, honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
