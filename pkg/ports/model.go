package ports

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rigmate/rigmate/pkg/dialog"
)

// ToolSpec describes one capability exposed to the model: a name, a prose
// description, and an OpenAPI schema for its arguments. A model bound to a
// spec list must restrict emitted tool calls to those names.
type ToolSpec struct {
	Name        string
	Description string
	Schema      *openapi3.Schema
}

// ModelRequest is one synchronous invocation of a bound model.
type ModelRequest struct {
	// System is the fully rendered system prompt for the active assistant.
	System string

	// Messages is the conversation history, oldest first.
	Messages []dialog.Message

	// Tools is the capability surface bound for this invocation.
	Tools []ToolSpec
}

// ChatModel is the model-binding runnable invoked by assistant nodes. It
// returns a single candidate assistant message, possibly carrying tool calls.
type ChatModel interface {
	Invoke(ctx context.Context, req ModelRequest) (dialog.Message, error)
}

// UserInfoSource supplies profile data for a thread at the start of a turn.
// Implementations may hit a CRM, a database, or derive it from the
// conversation itself.
type UserInfoSource interface {
	FetchUserInfo(ctx context.Context, threadID string, state *dialog.State) (string, error)
}
