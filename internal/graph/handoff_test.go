package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/pkg/dialog"
)

func TestEntryNode_AnswersDelegateCall(t *testing.T) {
	node := entryNode("PC build assistant", dialog.SkillBuildPC)

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("build me a pc"))
	st.Append(dialog.NewAssistantMessage("",
		delegateCall("call-42", assistants.ToolToPCBuild, map[string]any{"user_input": "a gaming rig"})))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)

	require.Len(t, up.Messages, 1)
	msg := up.Messages[0]
	assert.Equal(t, dialog.RoleTool, msg.Role)
	assert.Equal(t, "call-42", msg.ToolCallID)
	assert.Contains(t, msg.Content, "PC build assistant is now active")
	assert.Contains(t, msg.Content, "CompleteOrEscalate")

	require.NoError(t, applyUpdate(st, up))
	assert.Equal(t, []dialog.Skill{dialog.SkillBuildPC}, st.DialogStack)
}

func TestEntryNode_MissingDelegateCall(t *testing.T) {
	node := entryNode("price validation assistant", dialog.SkillValidatePrice)

	st := dialog.NewState()
	st.Append(dialog.NewAssistantMessage("nothing to answer here"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)

	require.Len(t, up.Messages, 1)
	msg := up.Messages[0]
	assert.Equal(t, unknownToolCallID, msg.ToolCallID)
	assert.Equal(t, "price validation assistant", msg.Name)
	assert.Contains(t, msg.Content, "could not be identified")

	require.NoError(t, applyUpdate(st, up))
	assert.Equal(t, []dialog.Skill{dialog.SkillValidatePrice}, st.DialogStack)
}

func TestLeaveSkillNode_AnswersEscalationCall(t *testing.T) {
	node := leaveSkillNode()

	st := dialog.NewState()
	st.DialogStack = []dialog.Skill{dialog.SkillBuildPC}
	st.Append(dialog.NewAssistantMessage("",
		delegateCall("esc-1", assistants.ToolCompleteOrEscalate, map[string]any{"cancel": true, "reason": "done"})))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)

	require.Len(t, up.Messages, 1)
	assert.Equal(t, "esc-1", up.Messages[0].ToolCallID)
	assert.Contains(t, up.Messages[0].Content, "primary assistant")

	require.NoError(t, applyUpdate(st, up))
	assert.Empty(t, st.DialogStack)
}

func TestLeaveSkillNode_WithoutCallsStillPops(t *testing.T) {
	node := leaveSkillNode()

	st := dialog.NewState()
	st.DialogStack = []dialog.Skill{dialog.SkillValidatePrice}
	st.Append(dialog.NewAssistantMessage("all wrapped up"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)
	assert.Empty(t, up.Messages)

	require.NoError(t, applyUpdate(st, up))
	assert.Empty(t, st.DialogStack)
}

func TestUserInfoNode_DerivesFromLastUserMessage(t *testing.T) {
	node := userInfoNode(nil)

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("Build Me A Quiet PC"))
	st.Append(dialog.NewAssistantMessage("on it"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)
	require.NotNil(t, up.UserInfo)
	assert.Equal(t, "build me a quiet pc", *up.UserInfo)
}

type staticUserInfo struct {
	info string
	err  error
}

func (s staticUserInfo) FetchUserInfo(context.Context, string, *dialog.State) (string, error) {
	return s.info, s.err
}

func TestUserInfoNode_CustomSource(t *testing.T) {
	node := userInfoNode(staticUserInfo{info: "returning customer, prefers AMD"})

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("hello"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)
	require.NotNil(t, up.UserInfo)
	assert.Equal(t, "returning customer, prefers AMD", *up.UserInfo)
}

func TestUserInfoNode_SourceError(t *testing.T) {
	node := userInfoNode(staticUserInfo{err: errors.New("profile service down")})

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("hello"))

	_, err := node(context.Background(), testTurnCtx(), st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile service down")
}

func TestApplyUpdate(t *testing.T) {
	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("hi"))

	info := "short and to the point"
	err := applyUpdate(st, Update{
		Messages: []dialog.Message{dialog.NewAssistantMessage("hello")},
		StackOp:  dialog.Push(dialog.SkillBuildPC),
		UserInfo: &info,
	})
	require.NoError(t, err)
	assert.Len(t, st.Messages, 2)
	assert.Equal(t, []dialog.Skill{dialog.SkillBuildPC}, st.DialogStack)
	assert.Equal(t, info, st.UserInfo)

	err = applyUpdate(st, Update{StackOp: dialog.StackOp("jump")})
	require.ErrorIs(t, err, dialog.ErrInvalidTransition)
}
