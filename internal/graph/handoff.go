package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// unknownToolCallID stands in for the delegate call ID when an entry node
// runs without a preceding tool call to answer.
const unknownToolCallID = "unknown_tool_call_id"

// entryNode announces the handoff to a specialized assistant and pushes
// its skill onto the dialog stack. The announcement answers the delegate
// tool call so the transcript stays well formed; without one, a sentinel
// call ID and a reduced announcement are used instead.
func entryNode(assistantName string, skill dialog.Skill) nodeFunc {
	announcement := fmt.Sprintf(
		"The %s is now active. Review the conversation between the primary assistant and the user above."+
			" The user's request has not been fulfilled yet. Use the provided tools to complete the task."+
			" Remember, you are the %s, and the task is not complete until the appropriate tool has been"+
			" invoked successfully. If the user changes their mind, or needs help you cannot provide, call"+
			" CompleteOrEscalate to hand the dialog back to the primary assistant.",
		assistantName, assistantName,
	)
	reduced := fmt.Sprintf(
		"The %s is now active, but the tool call that triggered the handoff could not be identified.",
		assistantName,
	)

	return func(_ context.Context, _ turnCtx, st *dialog.State) (Update, error) {
		msg := dialog.NewToolMessage(unknownToolCallID, assistantName, reduced)
		if last, ok := st.LastMessage(); ok && last.HasToolCalls() {
			msg = dialog.NewToolMessage(last.ToolCalls[0].ID, "", announcement)
		}
		return Update{
			Messages: []dialog.Message{msg},
			StackOp:  dialog.Push(skill),
		}, nil
	}
}

// leaveSkillNode pops the active skill and answers the escalation call, if
// there is one, so the primary assistant resumes on a closed transcript.
func leaveSkillNode() nodeFunc {
	const resuming = "Wrapping up the current task and returning to the primary assistant." +
		" Review the conversation so far and assist the user as needed."

	return func(_ context.Context, _ turnCtx, st *dialog.State) (Update, error) {
		up := Update{StackOp: dialog.StackPop}
		if last, ok := st.LastMessage(); ok && last.HasToolCalls() {
			up.Messages = []dialog.Message{
				dialog.NewToolMessage(last.ToolCalls[0].ID, "", resuming),
			}
		}
		return up, nil
	}
}

// userInfoNode refreshes the user info that assistant prompts render. With
// no source configured it falls back to the most recent user message,
// lowercased, which is enough context for prompt personalization.
func userInfoNode(source ports.UserInfoSource) nodeFunc {
	return func(ctx context.Context, tc turnCtx, st *dialog.State) (Update, error) {
		if source != nil {
			info, err := source.FetchUserInfo(ctx, tc.threadID, st)
			if err != nil {
				return Update{}, fmt.Errorf("fetch user info: %w", err)
			}
			return Update{UserInfo: &info}, nil
		}

		var info string
		for i := len(st.Messages) - 1; i >= 0; i-- {
			if st.Messages[i].Role == dialog.RoleUser {
				info = strings.ToLower(st.Messages[i].Text())
				break
			}
		}
		return Update{UserInfo: &info}, nil
	}
}
