package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rigmate/rigmate/pkg/dialog"
)

// NodeID names a node in the dialog graph.
type NodeID string

// The full node roster. NodeEnd is not a node: it is the routing target
// that marks the turn as complete.
const (
	NodeFetchUserInfo         NodeID = "fetch_user_info"
	NodePrimaryAssistant      NodeID = "primary_assistant"
	NodePrimaryAssistantTools NodeID = "primary_assistant_tools"
	NodeEnterBuildPC          NodeID = "enter_build_pc"
	NodeBuildPC               NodeID = "build_pc"
	NodeBuildPCTools          NodeID = "build_pc_tools"
	NodeEnterValidatePrice    NodeID = "enter_validate_price"
	NodeValidatePrice         NodeID = "validate_price"
	NodePriceValidationTools  NodeID = "price_validation_tools"
	NodeLeaveSkill            NodeID = "leave_skill"

	NodeEnd NodeID = "__end__"
)

// Update is a node's output: messages to append, an optional stack
// operation and an optional user info replacement. Nodes never mutate the
// state they receive; the orchestrator applies the update.
type Update struct {
	Messages []dialog.Message
	StackOp  dialog.StackOp
	UserInfo *string
}

// turnCtx carries the per-turn wiring every node receives explicitly:
// the thread being served, the lifecycle hooks and the logger. Nodes must
// not stash state anywhere else between steps.
type turnCtx struct {
	threadID string
	hooks    dialog.LifecycleHooks
	logger   *slog.Logger
}

// nodeFunc is the uniform node signature.
type nodeFunc func(ctx context.Context, tc turnCtx, st *dialog.State) (Update, error)

// applyUpdate folds a node's output into the state. A stack operation that
// names an unknown skill aborts the turn.
func applyUpdate(st *dialog.State, up Update) error {
	st.Append(up.Messages...)
	stack, err := dialog.UpdateStack(st.DialogStack, up.StackOp)
	if err != nil {
		return fmt.Errorf("apply stack op: %w", err)
	}
	st.DialogStack = stack
	if up.UserInfo != nil {
		st.UserInfo = *up.UserInfo
	}
	return nil
}
