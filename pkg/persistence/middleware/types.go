// Package middleware hardens checkpoint persistence. Middlewares wrap a
// CheckpointStore and transform checkpoints on their way to the backend:
// PII masking redacts sensitive substrings from transcripts, encryption
// seals the conversation state at rest. Thread metadata (pending node,
// update time) stays readable so operational queries work without keys.
package middleware

import "github.com/rigmate/rigmate/pkg/ports"

// Middleware allows wrapping a CheckpointStore to add behavior.
type Middleware func(ports.CheckpointStore) ports.CheckpointStore
