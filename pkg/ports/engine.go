package ports

import (
	"context"

	"github.com/rigmate/rigmate/pkg/dialog"
)

// TurnStream walks one conversation turn node by node. Streams hold the
// thread lock from creation until Close, so callers must always Close.
type TurnStream interface {
	// Next advances the turn by one node and reports whether a new
	// snapshot is available. It returns false once the turn completed,
	// failed or ran out of budget; Err separates the cases.
	Next(ctx context.Context) bool

	// Node returns the ID of the node that produced the current snapshot.
	Node() string

	// State returns an independent snapshot of the state after the most
	// recent node.
	State() *dialog.State

	// Pending reports whether the turn still has a node to run, which is
	// the case after an interrupted or aborted run.
	Pending() bool

	// Err returns the error that stopped the stream, if any.
	Err() error

	// Close releases the thread lock. Safe to call more than once.
	Close() error
}

// ChatEngine is the conversation surface the transport adapters (HTTP,
// MCP, CLI) drive. This is the interface to mock when testing an adapter.
type ChatEngine interface {
	// Stream appends the user message to the thread and starts a turn.
	Stream(ctx context.Context, threadID, message string) (TurnStream, error)

	// Resume continues a turn that was interrupted mid-graph. Resuming a
	// thread with nothing pending yields an already-exhausted stream.
	Resume(ctx context.Context, threadID string) (TurnStream, error)

	// Threads lists the IDs of all stored conversations.
	Threads(ctx context.Context) ([]string, error)

	// Thread loads one conversation checkpoint. Returns
	// dialog.ErrThreadNotFound for unknown IDs.
	Thread(ctx context.Context, threadID string) (*dialog.Checkpoint, error)

	// DeleteThread removes a conversation.
	DeleteThread(ctx context.Context, threadID string) error
}
