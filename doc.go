/*
Package rigmate is a conversational multi-agent engine for PC building advice: a primary assistant delegates to specialized skills (PC build, price validation) over a finite-state dialog graph with per-thread checkpointing.

It implements a "dialog stack" architecture, separating the routing table (Logic) from the conversation state (Messages, Stack) and side-effects (Tools).

# Concept

Rigmate treats one conversation turn as a walk through a graph of nodes. The router inspects the tool calls of the last assistant message to decide whether to run tools, delegate to a sub-assistant (pushing the dialog stack), escalate back (popping it), or end the turn. The state is checkpointed after every node, keyed by a caller-chosen thread ID, so threads survive restarts and interrupted turns can be resumed. This Hexagonal Architecture allows rigmate to be embedded in any interface: CLI, HTTP server, or MCP agent infrastructure.

# Key Features

  - Deterministic Routing: transitions live in a static table, reproducible given the same last message and dialog stack.
  - Tool Fallback: failing or panicking tools become error results the model can read and correct, never aborted turns.
  - Durable Threads: built-in support for long-running conversations on memory or Redis backends, with per-thread turn serialization.
  - Strict Contracts: the dialog stack accepts only its closed operation set; the graph is validated against the routing table at startup.

# Usage

Initialize the engine around a chat model and drive turns with Respond. You can use the default catalog-backed tools or inject your own registries.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/rigmate/rigmate"
		"github.com/rigmate/rigmate/pkg/adapters/gemini"
	)

	func main() {
		ctx := context.Background()

		// Connect the production model provider.
		client, err := gemini.Dial(ctx, "YOUR_API_KEY")
		if err != nil {
			log.Fatal(err)
		}

		eng, err := rigmate.New(gemini.NewModel(client, "gemini-2.0-flash"))
		if err != nil {
			log.Fatal(err)
		}

		// One persisted conversation per thread ID.
		reply, err := eng.Respond(ctx, "thread-123", "Build me a quiet PC for around $1500")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)

		// Inspect the turn node by node instead of waiting for the reply.
		stream, err := eng.Stream(ctx, "thread-123", "How much was the GPU?")
		if err != nil {
			log.Fatal(err)
		}
		defer stream.Close()
		for stream.Next(ctx) {
			fmt.Println("ran node:", stream.Node())
		}
		if err := stream.Err(); err != nil {
			log.Fatal(err)
		}
	}
*/
package rigmate
