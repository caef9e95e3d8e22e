package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rigmate/rigmate/internal/graph"
	"github.com/rigmate/rigmate/internal/presentation/mermaid"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialog graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the agent routing graph.
With --thread, the node where that conversation is suspended is highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		threadID, _ := cmd.Flags().GetString("thread")

		var overlay *mermaid.Overlay
		if threadID != "" {
			manager, cleanup := getManager(cmd)
			defer cleanup()

			cp, err := manager.Load(cmd.Context(), threadID)
			if err != nil {
				fmt.Printf("Error loading thread '%s': %v\n", threadID, err)
				os.Exit(1)
			}
			overlay = &mermaid.Overlay{Pending: cp.Next}
		}

		fmt.Print(mermaid.Render(graph.Transitions(), overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("thread", "", "Highlight the pending node of this thread")
}
