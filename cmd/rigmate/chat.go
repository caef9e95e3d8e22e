package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rigmate/rigmate"
	"github.com/rigmate/rigmate/internal/cli"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/internal/presentation/tui"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the build assistant in the terminal",
	Long: `Starts an interactive conversation. Replies render as markdown when
stdout is a terminal. Use --thread to resume an earlier conversation.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		threadID, _ := cmd.Flags().GetString("thread")
		headless, _ := cmd.Flags().GetBool("headless")
		debug, _ := cmd.Flags().GetBool("debug")

		// Logs stay on stderr; without --debug they are silenced entirely
		// so nothing interleaves with the conversation.
		logger := logging.NewNop()
		if debug {
			logger = cli.NewLogger(cfg, true)
		}

		engine, cleanup, err := cli.NewEngine(cmd.Context(), cfg, logger, cli.Options{Debug: debug})
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		runner := &rigmate.Runner{
			Input:    os.Stdin,
			Output:   os.Stdout,
			Headless: headless,
			ThreadID: threadID,
		}
		if !headless && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner()
			runner.Renderer = tui.NewRenderer()
		}

		if err := runner.Run(cmd.Context(), engine); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("thread", "", "Thread ID to resume (a fresh one is minted when empty)")
	chatCmd.Flags().Bool("headless", false, "Strict line-based IO without prompts or rendering")
	chatCmd.Flags().Bool("debug", false, "Log node transitions and tool calls to stderr")

	// Chatting is the default when no subcommand is given.
	rootCmd.Run = chatCmd.Run
}
