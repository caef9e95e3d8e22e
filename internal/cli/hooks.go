package cli

import (
	"log/slog"

	"github.com/rigmate/rigmate/pkg/dialog"
)

// DebugHooks logs every node transition and tool call at debug level.
func DebugHooks(logger *slog.Logger) dialog.LifecycleHooks {
	return dialog.LifecycleHooks{
		OnNodeEnter: func(e dialog.NodeEvent) {
			logger.Debug("Enter node", "thread_id", e.ThreadID, "node_id", e.NodeID)
		},
		OnNodeLeave: func(e dialog.NodeEvent) {
			logger.Debug("Leave node", "thread_id", e.ThreadID, "node_id", e.NodeID, "duration", e.Duration)
		},
		OnToolCall: func(e dialog.ToolEvent) {
			logger.Debug("Tool call", "tool_name", e.ToolName, "call_id", e.CallID)
		},
		OnToolReturn: func(e dialog.ToolEvent) {
			if e.IsError {
				logger.Debug("Tool return (error)", "tool_name", e.ToolName, "call_id", e.CallID, "duration", e.Duration)
				return
			}
			logger.Debug("Tool return", "tool_name", e.ToolName, "call_id", e.CallID, "duration", e.Duration)
		},
	}
}
