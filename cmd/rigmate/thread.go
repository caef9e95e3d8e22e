package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rigmate/rigmate/internal/cli"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/pkg/thread"
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Manage stored conversation threads",
	Long:  `List, inspect, and remove checkpointed conversations.`,
}

var threadLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored threads",
	Run: func(cmd *cobra.Command, args []string) {
		manager, cleanup := getManager(cmd)
		defer cleanup()

		threads, err := manager.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing threads: %v\n", err)
			os.Exit(1)
		}

		if len(threads) == 0 {
			fmt.Println("No stored threads found.")
			return
		}

		fmt.Println("Stored threads:")
		for _, id := range threads {
			fmt.Println("- " + id)
		}
	},
}

var threadInspectCmd = &cobra.Command{
	Use:   "inspect <thread-id>",
	Short: "Inspect the checkpoint of a thread",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		threadID := args[0]
		manager, cleanup := getManager(cmd)
		defer cleanup()

		cp, err := manager.Load(cmd.Context(), threadID)
		if err != nil {
			fmt.Printf("Error loading thread '%s': %v\n", threadID, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling checkpoint: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var threadRmCmd = &cobra.Command{
	Use:   "rm <thread-id>...",
	Short: "Remove one or more threads",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager, cleanup := getManager(cmd)
		defer cleanup()

		hasError := false
		for _, threadID := range args {
			if err := manager.Delete(cmd.Context(), threadID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", threadID, err)
				hasError = true
			} else {
				fmt.Printf("Removed thread '%s'\n", threadID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(threadCmd)
	threadCmd.AddCommand(threadLsCmd)
	threadCmd.AddCommand(threadInspectCmd)
	threadCmd.AddCommand(threadRmCmd)
}

func getManager(cmd *cobra.Command) (*thread.Manager, func()) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	manager, cleanup, err := cli.NewThreadManager(cfg, logging.NewNop())
	if err != nil {
		fmt.Printf("Error opening thread store: %v\n", err)
		os.Exit(1)
	}
	return manager, func() { _ = cleanup() }
}
