package rigmate_test

import (
	"context"
	"fmt"
	"log"

	"github.com/rigmate/rigmate"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/registry"
)

// ExampleNew_customTools demonstrates how to use rigmate purely as a Go
// library, replacing the built-in catalog tools with your own registries.
func ExampleNew_customTools() {
	// 1. Define the PC build assistant's tool surface with pure Go funcs.
	buildTools := registry.New()
	buildTools.Register(registry.Tool{
		Name:        "pc_builder",
		Description: "Assembles a PC from the in-house inventory system.",
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			return "inventory build: Ryzen 7 7800X3D + RTX 4080", nil
		},
	})

	// 2. Script a model that uses the tool and then summarizes.
	model := &scriptedModel{replies: []dialog.Message{
		dialog.NewAssistantMessage("", dialog.ToolCall{
			ID:   "call_1",
			Name: "ToPCBuildAssistant",
			Args: map[string]any{"user_input": "a high end pc"},
		}),
		dialog.NewAssistantMessage("", dialog.ToolCall{
			ID:   "call_2",
			Name: "pc_builder",
			Args: map[string]any{},
		}),
		dialog.NewAssistantMessage("", dialog.ToolCall{
			ID:   "call_3",
			Name: "CompleteOrEscalate",
			Args: map[string]any{"reason": "done"},
		}),
		dialog.NewAssistantMessage("I put together a Ryzen 7 7800X3D with an RTX 4080 for you."),
	}}

	// 3. Initialize the Engine with the custom registry. The price
	// validation assistant keeps its catalog defaults.
	eng, err := rigmate.New(model, rigmate.WithBuildTools(buildTools))
	if err != nil {
		log.Fatal(err)
	}

	reply, err := eng.Respond(context.Background(), "thread-custom", "I want a high end PC")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply)
	// Output:
	// I put together a Ryzen 7 7800X3D with an RTX 4080 for you.
}
