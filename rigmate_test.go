package rigmate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigmate/rigmate"
	"github.com/rigmate/rigmate/pkg/adapters/memory"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
	"github.com/rigmate/rigmate/pkg/registry"
)

func TestNew_RequiresModel(t *testing.T) {
	_, err := rigmate.New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat model is required")
}

func TestEngine_RespondPersistsThread(t *testing.T) {
	store := memory.NewStore()
	model := &scriptedModel{replies: []dialog.Message{
		dialog.NewAssistantMessage("A PSU converts mains power to DC rails."),
	}}

	eng, err := rigmate.New(model, rigmate.WithStore(store))
	require.NoError(t, err)

	ctx := context.Background()
	reply, err := eng.Respond(ctx, "t-respond", "What does a PSU do?")
	require.NoError(t, err)
	assert.Equal(t, "A PSU converts mains power to DC rails.", reply)

	cp, err := store.Load(ctx, "t-respond")
	require.NoError(t, err)
	assert.False(t, cp.Pending())
	require.Len(t, cp.State.Messages, 2)
	assert.Equal(t, dialog.RoleUser, cp.State.Messages[0].Role)
	assert.Equal(t, dialog.RoleAssistant, cp.State.Messages[1].Role)
	assert.Empty(t, cp.State.DialogStack)

	ids, err := eng.Threads(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "t-respond")
}

func TestEngine_RespondSurfacesRecursionLimit(t *testing.T) {
	// The script delegates and then keeps calling the build tool, cycling
	// build_pc <-> build_pc_tools until the budget runs out.
	looping := loopingToolModel{}

	eng, err := rigmate.New(looping, rigmate.WithRecursionLimit(6))
	require.NoError(t, err)

	_, err = eng.Respond(context.Background(), "t-limit", "Build me a PC")
	require.Error(t, err)
	assert.ErrorIs(t, err, dialog.ErrRecursionLimit)
}

func TestEngine_StreamYieldsNodeNames(t *testing.T) {
	model := &scriptedModel{replies: []dialog.Message{
		dialog.NewAssistantMessage("Hello right back."),
	}}
	eng, err := rigmate.New(model)
	require.NoError(t, err)

	ctx := context.Background()
	s, err := eng.Stream(ctx, "t-stream", "hello")
	require.NoError(t, err)
	defer s.Close()

	var nodes []string
	for s.Next(ctx) {
		nodes = append(nodes, s.Node())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"fetch_user_info", "primary_assistant"}, nodes)
	assert.False(t, s.Pending())

	final := s.State()
	require.NotNil(t, final)
	assert.Equal(t, "Hello right back.", final.LastReply())
}

func TestEngine_ResumeCompletedThreadIsExhausted(t *testing.T) {
	model := &scriptedModel{replies: []dialog.Message{
		dialog.NewAssistantMessage("done"),
	}}
	eng, err := rigmate.New(model)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.Respond(ctx, "t-resume", "hi")
	require.NoError(t, err)

	s, err := eng.Resume(ctx, "t-resume")
	require.NoError(t, err)
	defer s.Close()
	assert.False(t, s.Next(ctx), "a completed turn has nothing to resume")
	require.NoError(t, s.Err())
}

func TestEngine_ThreadAdministration(t *testing.T) {
	model := &scriptedModel{replies: []dialog.Message{
		dialog.NewAssistantMessage("noted"),
	}}
	eng, err := rigmate.New(model)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.Respond(ctx, "t-admin", "remember this")
	require.NoError(t, err)

	cp, err := eng.Thread(ctx, "t-admin")
	require.NoError(t, err)
	assert.Equal(t, "t-admin", cp.ThreadID)
	assert.Equal(t, "noted", cp.State.LastReply())

	require.NoError(t, eng.DeleteThread(ctx, "t-admin"))
	_, err = eng.Thread(ctx, "t-admin")
	assert.ErrorIs(t, err, dialog.ErrThreadNotFound)

	ids, err := eng.Threads(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "t-admin")
}

func TestEngine_CustomToolRegistries(t *testing.T) {
	hits := 0
	buildTools := registry.New()
	buildTools.Register(registry.Tool{
		Name:        "pc_builder",
		Description: "counts invocations",
		Run: func(context.Context, map[string]any) (any, error) {
			hits++
			return "ok", nil
		},
	})

	model := &scriptedModel{replies: []dialog.Message{
		dialog.NewAssistantMessage("", dialog.ToolCall{ID: "c1", Name: "ToPCBuildAssistant", Args: map[string]any{"user_input": "x"}}),
		dialog.NewAssistantMessage("", dialog.ToolCall{ID: "c2", Name: "pc_builder", Args: map[string]any{}}),
		dialog.NewAssistantMessage("", dialog.ToolCall{ID: "c3", Name: "CompleteOrEscalate", Args: map[string]any{"reason": "done"}}),
		dialog.NewAssistantMessage("all set"),
	}}

	eng, err := rigmate.New(model, rigmate.WithBuildTools(buildTools))
	require.NoError(t, err)

	reply, err := eng.Respond(context.Background(), "t-tools", "build it")
	require.NoError(t, err)
	assert.Equal(t, "all set", reply)
	assert.Equal(t, 1, hits)
}

// loopingToolModel delegates into build_pc on first contact and then
// re-issues the same tool call forever.
type loopingToolModel struct{}

func (loopingToolModel) Invoke(_ context.Context, req ports.ModelRequest) (dialog.Message, error) {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == dialog.RoleTool {
			return dialog.NewAssistantMessage("", dialog.ToolCall{ID: "loop", Name: "pc_builder", Args: map[string]any{}}), nil
		}
	}
	return dialog.NewAssistantMessage("", dialog.ToolCall{ID: "del", Name: "ToPCBuildAssistant", Args: map[string]any{"user_input": "pc"}}), nil
}
