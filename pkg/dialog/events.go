package dialog

import (
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventNodeLeave  EventType = "node_leave"
	EventToolCall   EventType = "tool_call"
	EventToolReturn EventType = "tool_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ThreadID  string    `json:"thread_id"`
}

// NodeEvent represents entry to or exit from a graph node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	// Duration is set on node_leave events only.
	Duration time.Duration `json:"duration,omitempty"`
}

// ToolEvent represents one tool execution inside a tools node.
type ToolEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	ToolName string `json:"tool_name"`
	CallID   string `json:"call_id"`
	IsError  bool   `json:"is_error,omitempty"`
	// Duration is set on tool_return events only.
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for orchestrator observability. Any field
// may be nil. Hooks run synchronously on the turn's goroutine and must not
// block. Tool hooks fire concurrently when calls run in parallel.
type LifecycleHooks struct {
	OnNodeEnter  func(NodeEvent)
	OnNodeLeave  func(NodeEvent)
	OnToolCall   func(ToolEvent)
	OnToolReturn func(ToolEvent)
}

// Merge layers two hook sets; both callbacks fire, first receiver first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:  mergeHook(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave:  mergeHook(h.OnNodeLeave, other.OnNodeLeave),
		OnToolCall:   mergeHook(h.OnToolCall, other.OnToolCall),
		OnToolReturn: mergeHook(h.OnToolReturn, other.OnToolReturn),
	}
}

func mergeHook[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(ev E) {
			a(ev)
			b(ev)
		}
	}
}
