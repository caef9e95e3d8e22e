package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/registry"
)

// fallbackToolName marks a synthetic tool result that does not answer any
// real call, produced when a tools node runs without tool calls to serve.
const fallbackToolName = "error_handler"

const missingCallsContent = "Error: the last assistant message contains no tool calls.\nPlease fix your mistakes."

// toolsNode executes every tool call of the last assistant message. Calls
// run concurrently; results keep the call order and answer the call IDs
// one for one. A failing, panicking or unknown tool becomes an error
// result instead of aborting the turn, so the assistant can read the
// failure and correct itself.
func toolsNode(id NodeID, reg *registry.Registry) nodeFunc {
	return func(ctx context.Context, tc turnCtx, st *dialog.State) (Update, error) {
		last, ok := st.LastMessage()
		if !ok || !last.HasToolCalls() {
			msg := dialog.NewToolMessage("", fallbackToolName, missingCallsContent)
			return Update{Messages: []dialog.Message{msg}}, nil
		}

		results := make([]dialog.Message, len(last.ToolCalls))
		g, gctx := errgroup.WithContext(ctx)
		for i, call := range last.ToolCalls {
			g.Go(func() error {
				results[i] = tc.runTool(gctx, id, reg, call)
				return nil
			})
		}
		_ = g.Wait()

		return Update{Messages: results}, nil
	}
}

// runTool executes a single call and always produces a tool result for its
// call ID.
func (tc turnCtx) runTool(ctx context.Context, node NodeID, reg *registry.Registry, call dialog.ToolCall) dialog.Message {
	start := time.Now()
	if tc.hooks.OnToolCall != nil {
		tc.hooks.OnToolCall(dialog.ToolEvent{
			EventBase: dialog.EventBase{Timestamp: start, Type: dialog.EventToolCall, ThreadID: tc.threadID},
			NodeID:    string(node),
			ToolName:  call.Name,
			CallID:    call.ID,
		})
	}

	out, err := executeCall(ctx, reg, call)
	var content string
	if err != nil {
		content = fmt.Sprintf("Error: %v\nPlease fix your mistakes.", err)
		tc.logger.Warn("tool call failed",
			"tool", call.Name,
			"thread_id", tc.threadID,
			"err", err,
		)
	} else {
		content = renderResult(out)
	}

	if tc.hooks.OnToolReturn != nil {
		tc.hooks.OnToolReturn(dialog.ToolEvent{
			EventBase: dialog.EventBase{Timestamp: time.Now(), Type: dialog.EventToolReturn, ThreadID: tc.threadID},
			NodeID:    string(node),
			ToolName:  call.Name,
			CallID:    call.ID,
			IsError:   err != nil,
			Duration:  time.Since(start),
		})
	}

	return dialog.NewToolMessage(call.ID, call.Name, content)
}

// executeCall shields the turn from panicking tools.
func executeCall(ctx context.Context, reg *registry.Registry, call dialog.ToolCall) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", call.Name, r)
		}
	}()
	return reg.Execute(ctx, call.Name, call.Args)
}

// renderResult turns a tool's return value into message content. Strings
// pass through; everything else is serialized as JSON.
func renderResult(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
