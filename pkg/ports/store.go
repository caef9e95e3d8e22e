package ports

import (
	"context"

	"github.com/rigmate/rigmate/pkg/dialog"
)

// CheckpointStore defines the interface for persisting conversation
// checkpoints. The orchestrator writes a checkpoint after every node, which
// makes turns resumable and threads durable across restarts.
type CheckpointStore interface {
	// Save persists the checkpoint for a given thread ID.
	Save(ctx context.Context, threadID string, cp *dialog.Checkpoint) error

	// Load retrieves the checkpoint for a given thread ID.
	// Returns dialog.ErrThreadNotFound if the thread does not exist.
	Load(ctx context.Context, threadID string) (*dialog.Checkpoint, error)

	// Delete removes the checkpoint for a given thread ID.
	Delete(ctx context.Context, threadID string) error

	// List returns the IDs of all stored threads.
	List(ctx context.Context) ([]string, error)
}
