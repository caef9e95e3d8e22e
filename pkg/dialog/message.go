package dialog

// Role identifies the producer of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a request from the model to invoke a named capability.
// Compatible with OpenAI/MCP style tool call schemas.
type ToolCall struct {
	ID   string         `json:"id"`             // Unique ID for this specific call (from the model or generated)
	Name string         `json:"name"`           // Capability name to invoke
	Args map[string]any `json:"args,omitempty"` // Arguments for the capability
}

// Block is one element of structured message content. Some model providers
// return content as a list of typed blocks instead of a plain string.
type Block struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// Message is one utterance in a conversation. Messages are owned by the
// thread's State and are never mutated after being appended.
type Message struct {
	Role    Role    `json:"role"`
	Content string  `json:"content,omitempty"`
	Blocks  []Block `json:"blocks,omitempty"` // structured content; takes precedence over Content when set

	// ToolCalls is populated only on assistant messages that request
	// capability invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID and Name are populated only on tool messages and identify
	// the originating ToolCall.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// NewUserMessage builds a plain user utterance.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage builds an assistant utterance, optionally carrying
// tool calls.
func NewAssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// NewToolMessage builds a tool result addressed to the given call ID.
func NewToolMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Name: name, Content: content}
}

// HasToolCalls reports whether the message requests any capability invocation.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Text returns the textual content of the message. For block content the
// block texts are concatenated in order.
func (m Message) Text() string {
	if len(m.Blocks) == 0 {
		return m.Content
	}
	var out string
	for _, b := range m.Blocks {
		out += b.Text
	}
	return out
}

// Actionable reports whether the message is a usable model response: it
// either carries at least one tool call or has non-empty textual content.
// Block content counts only if the first block has text, mirroring how
// providers signal refusals with empty leading blocks.
func (m Message) Actionable() bool {
	if m.HasToolCalls() {
		return true
	}
	if len(m.Blocks) > 0 {
		return m.Blocks[0].Text != ""
	}
	return m.Content != ""
}
