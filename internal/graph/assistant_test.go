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

func testBinding() assistants.Binding {
	return assistants.NewSet(testBuildTools(), testPriceTools()).Primary
}

func TestAssistantNode_ReturnsActionableResponse(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("PC stands for personal computer.")},
	}}
	node := assistantNode(model, testBinding(), DefaultEmptyRetries)

	st := dialog.NewState()
	st.UserInfo = "curious newcomer"
	st.Append(dialog.NewUserMessage("what does PC stand for?"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)
	require.Len(t, up.Messages, 1)
	assert.Equal(t, dialog.RoleAssistant, up.Messages[0].Role)
	assert.Equal(t, "PC stands for personal computer.", up.Messages[0].Content)

	reqs := model.recorded()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].System, "curious newcomer")
	assert.Equal(t, st.Messages, reqs[0].Messages)

	var names []string
	for _, spec := range reqs[0].Tools {
		names = append(names, spec.Name)
	}
	assert.Equal(t, []string{assistants.ToolToPCBuild, assistants.ToolToPriceValidation}, names)
}

func TestAssistantNode_RetriesEmptyResponses(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.Message{Role: dialog.RoleAssistant}},
		{msg: dialog.Message{Role: dialog.RoleAssistant}},
		{msg: dialog.NewAssistantMessage("a real answer")},
	}}
	node := assistantNode(model, testBinding(), DefaultEmptyRetries)

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("hello?"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)
	require.Len(t, up.Messages, 1)
	assert.Equal(t, "a real answer", up.Messages[0].Content)

	reqs := model.recorded()
	require.Len(t, reqs, 3)
	assert.Len(t, reqs[0].Messages, 1)
	assert.Len(t, reqs[1].Messages, 2)
	assert.Len(t, reqs[2].Messages, 3)
	assert.Equal(t, nudge, reqs[2].Messages[2].Content)
	assert.Equal(t, dialog.RoleUser, reqs[2].Messages[2].Role)

	// The nudges stay out of the dialog state.
	assert.Len(t, st.Messages, 1)
}

func TestAssistantNode_EmptyResponseBudget(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.Message{Role: dialog.RoleAssistant}},
		{msg: dialog.Message{Role: dialog.RoleAssistant}},
		{msg: dialog.Message{Role: dialog.RoleAssistant}},
	}}
	node := assistantNode(model, testBinding(), 3)

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("hello?"))

	_, err := node(context.Background(), testTurnCtx(), st)
	require.ErrorIs(t, err, dialog.ErrEmptyResponse)
	assert.Len(t, model.recorded(), 3)
}

func TestAssistantNode_ToolCallOnlyResponseIsActionable(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("", delegateCall("c1", assistants.ToolToPCBuild, map[string]any{"user_input": "gaming rig"}))},
	}}
	node := assistantNode(model, testBinding(), DefaultEmptyRetries)

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("build me a pc"))

	up, err := node(context.Background(), testTurnCtx(), st)
	require.NoError(t, err)
	require.Len(t, up.Messages, 1)
	assert.True(t, up.Messages[0].HasToolCalls())
	assert.Len(t, model.recorded(), 1)
}

func TestAssistantNode_ModelError(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{err: errors.New("quota exhausted")},
	}}
	node := assistantNode(model, testBinding(), DefaultEmptyRetries)

	st := dialog.NewState()
	st.Append(dialog.NewUserMessage("hello?"))

	_, err := node(context.Background(), testTurnCtx(), st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestDefaultEmptyRetries(t *testing.T) {
	assert.Equal(t, 8, DefaultEmptyRetries)
}
