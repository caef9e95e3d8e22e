package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/pkg/adapters/memory"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
	"github.com/rigmate/rigmate/pkg/registry"
	"github.com/rigmate/rigmate/pkg/thread"
)

func newOrchestratorWithSet(t *testing.T, model ports.ChatModel, set assistants.Set, opts ...OrchestratorOption) (*Orchestrator, *thread.Manager) {
	t.Helper()
	g, err := New(Config{Model: model, Assistants: set})
	require.NoError(t, err)
	manager := thread.NewManager(memory.NewStore())
	return NewOrchestrator(g, manager, opts...), manager
}

func TestOrchestrator_SimpleTurn(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("PC stands for personal computer.")},
	}}
	o, manager := newTestOrchestrator(t, model)
	ctx := context.Background()

	s, err := o.Stream(ctx, "t1", dialog.NewUserMessage("What does PC stand for?"))
	require.NoError(t, err)
	nodes, snaps := drain(ctx, s)
	require.NoError(t, s.Err())
	require.NoError(t, s.Close())

	assert.Equal(t, []NodeID{NodeFetchUserInfo, NodePrimaryAssistant}, nodes)
	require.Len(t, snaps, 2)

	assert.Equal(t, "what does pc stand for?", snaps[0].UserInfo)
	assert.Len(t, snaps[0].Messages, 1, "early snapshots stay untouched by later nodes")
	require.Len(t, snaps[1].Messages, 2)
	assert.Equal(t, "PC stands for personal computer.", snaps[1].Messages[1].Content)

	cp, err := manager.Load(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, cp.Pending())
	assert.Len(t, cp.State.Messages, 2)
	assert.Empty(t, cp.State.DialogStack)
}

func TestOrchestrator_DelegationRoundTrip(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("",
			delegateCall("del-1", assistants.ToolToPCBuild, map[string]any{"user_input": "a gaming rig"}))},
		{msg: dialog.NewAssistantMessage("",
			delegateCall("tool-1", "pc_builder", map[string]any{"budget": 1500}))},
		{msg: dialog.NewAssistantMessage("",
			delegateCall("esc-1", assistants.ToolCompleteOrEscalate, map[string]any{"cancel": true, "reason": "build assembled"}))},
		{msg: dialog.NewAssistantMessage("Here is your build: Ryzen 5 7600 with an RTX 4070.")},
	}}
	o, manager := newTestOrchestrator(t, model)
	ctx := context.Background()

	s, err := o.Stream(ctx, "t2", dialog.NewUserMessage("Build me a gaming PC"))
	require.NoError(t, err)
	nodes, snaps := drain(ctx, s)
	require.NoError(t, s.Err())
	require.NoError(t, s.Close())

	assert.Equal(t, []NodeID{
		NodeFetchUserInfo,
		NodePrimaryAssistant,
		NodeEnterBuildPC,
		NodeBuildPC,
		NodeBuildPCTools,
		NodeBuildPC,
		NodeLeaveSkill,
		NodePrimaryAssistant,
	}, nodes)

	// Handoff: the entry node answered the delegate call and pushed the skill.
	entry := snaps[2]
	assert.Equal(t, []dialog.Skill{dialog.SkillBuildPC}, entry.DialogStack)
	entryMsg, _ := entry.LastMessage()
	assert.Equal(t, "del-1", entryMsg.ToolCallID)
	assert.Contains(t, entryMsg.Content, "PC build assistant is now active")

	// Tool execution: one result, answering the assistant's call.
	toolRes, _ := snaps[4].LastMessage()
	assert.Equal(t, "tool-1", toolRes.ToolCallID)
	assert.Equal(t, "pc_builder", toolRes.Name)
	assert.Contains(t, toolRes.Content, "RTX 4070")

	// Escalation: the stack is popped and the escalate call answered.
	left := snaps[6]
	assert.Empty(t, left.DialogStack)
	leftMsg, _ := left.LastMessage()
	assert.Equal(t, "esc-1", leftMsg.ToolCallID)

	cp, err := manager.Load(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, cp.Pending())
	assert.Len(t, cp.State.Messages, 8)
	final, _ := cp.State.LastMessage()
	assert.Contains(t, final.Content, "Here is your build")

	// The specialized assistant saw its own prompt and tool surface.
	reqs := model.recorded()
	require.Len(t, reqs, 4)
	assert.Contains(t, reqs[1].System, "PC build assistant")
	var skillTools []string
	for _, spec := range reqs[1].Tools {
		skillTools = append(skillTools, spec.Name)
	}
	assert.Equal(t, []string{"pc_builder", assistants.ToolCompleteOrEscalate}, skillTools)
}

func TestOrchestrator_ToolFailureFeedsBack(t *testing.T) {
	priceTools := registry.New()
	priceTools.Register(registry.Tool{
		Name: "component_prices",
		Run: func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("price feed timeout")
		},
	})
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("",
			delegateCall("del-1", assistants.ToolToPriceValidation, map[string]any{"input_data": "RTX 4070"}))},
		{msg: dialog.NewAssistantMessage("",
			delegateCall("tc-1", "component_prices", map[string]any{}))},
		{msg: dialog.NewAssistantMessage("I could not reach the price feed, sorry.")},
	}}
	o, manager := newOrchestratorWithSet(t, model, assistants.NewSet(testBuildTools(), priceTools))
	ctx := context.Background()

	st, err := o.Run(ctx, "t3", dialog.NewUserMessage("Is 549 a fair price for an RTX 4070?"))
	require.NoError(t, err)

	// The failure is part of the transcript, not a turn abort.
	reqs := model.recorded()
	require.Len(t, reqs, 3)
	lastSeen := reqs[2].Messages[len(reqs[2].Messages)-1]
	assert.Equal(t, dialog.RoleTool, lastSeen.Role)
	assert.Equal(t, "tc-1", lastSeen.ToolCallID)
	assert.Contains(t, lastSeen.Content, "Error: price feed timeout")
	assert.Contains(t, lastSeen.Content, "Please fix your mistakes.")

	final, _ := st.LastMessage()
	assert.Contains(t, final.Content, "could not reach the price feed")

	cp, err := manager.Load(ctx, "t3")
	require.NoError(t, err)
	assert.False(t, cp.Pending())
}

func TestOrchestrator_RecursionLimit(t *testing.T) {
	model := loopingModel{call: dialog.ToolCall{ID: "c1", Name: "noop"}}
	o, manager := newTestOrchestrator(t, model, WithRecursionLimit(5))
	ctx := context.Background()

	s, err := o.Stream(ctx, "t4", dialog.NewUserMessage("loop forever"))
	require.NoError(t, err)
	nodes, _ := drain(ctx, s)
	assert.Len(t, nodes, 5)
	require.ErrorIs(t, s.Err(), dialog.ErrRecursionLimit)
	assert.True(t, s.Pending())
	require.NoError(t, s.Close())

	// The checkpoint survives the abort and still points mid-turn.
	cp, err := manager.Load(ctx, "t4")
	require.NoError(t, err)
	assert.True(t, cp.Pending())
	assert.Equal(t, string(NodePrimaryAssistant), cp.Next)
	assert.Len(t, cp.State.Messages, 5)

	// Resuming grants a fresh budget and picks up where the run stopped.
	rs, err := o.Resume(ctx, "t4")
	require.NoError(t, err)
	moreNodes, _ := drain(ctx, rs)
	require.Len(t, moreNodes, 5)
	assert.Equal(t, NodePrimaryAssistant, moreNodes[0])
	require.ErrorIs(t, rs.Err(), dialog.ErrRecursionLimit)
	require.NoError(t, rs.Close())
}

func TestOrchestrator_ResumeAfterInterruption(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("",
			delegateCall("del-1", assistants.ToolToPCBuild, map[string]any{"user_input": "a gaming rig"}))},
		{msg: dialog.NewAssistantMessage("",
			delegateCall("esc-1", assistants.ToolCompleteOrEscalate, map[string]any{"cancel": true, "reason": "done"}))},
		{msg: dialog.NewAssistantMessage("All set.")},
	}}
	o, manager := newTestOrchestrator(t, model)
	ctx := context.Background()

	s, err := o.Stream(ctx, "t5", dialog.NewUserMessage("Build me a PC"))
	require.NoError(t, err)
	require.True(t, s.Next(ctx))
	require.True(t, s.Next(ctx))
	assert.True(t, s.Pending())
	require.NoError(t, s.Close())

	cp, err := manager.Load(ctx, "t5")
	require.NoError(t, err)
	require.Equal(t, string(NodeEnterBuildPC), cp.Next)

	rs, err := o.Resume(ctx, "t5")
	require.NoError(t, err)
	nodes, _ := drain(ctx, rs)
	require.NoError(t, rs.Err())
	require.NoError(t, rs.Close())
	assert.Equal(t, []NodeID{
		NodeEnterBuildPC,
		NodeBuildPC,
		NodeLeaveSkill,
		NodePrimaryAssistant,
	}, nodes)

	// Resuming a finished turn is a no-op.
	again, err := o.Resume(ctx, "t5")
	require.NoError(t, err)
	assert.False(t, again.Next(ctx))
	assert.NoError(t, again.Err())
	require.NoError(t, again.Close())
}

func TestOrchestrator_ResumeUnknownThread(t *testing.T) {
	model := &fakeModel{}
	o, _ := newTestOrchestrator(t, model)

	_, err := o.Resume(context.Background(), "ghost")
	require.ErrorIs(t, err, dialog.ErrThreadNotFound)
}

func TestOrchestrator_ModelFailureKeepsCheckpoint(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("",
			delegateCall("del-1", assistants.ToolToPCBuild, map[string]any{"user_input": "a quiet pc"}))},
		{err: errors.New("quota exhausted")},
		{msg: dialog.NewAssistantMessage("Here is a quiet build.")},
		{msg: dialog.NewAssistantMessage("A cheaper variant uses the RX 7600.")},
	}}
	o, manager := newTestOrchestrator(t, model)
	ctx := context.Background()

	_, err := o.Run(ctx, "t6", dialog.NewUserMessage("Build a quiet PC"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")

	cp, err := manager.Load(ctx, "t6")
	require.NoError(t, err)
	require.True(t, cp.Pending())
	assert.Equal(t, string(NodeBuildPC), cp.Next)

	// The failed node is retried on resume.
	rs, err := o.Resume(ctx, "t6")
	require.NoError(t, err)
	nodes, _ := drain(ctx, rs)
	require.NoError(t, rs.Err())
	require.NoError(t, rs.Close())
	assert.Equal(t, []NodeID{NodeBuildPC}, nodes)

	cp, err = manager.Load(ctx, "t6")
	require.NoError(t, err)
	assert.False(t, cp.Pending())
	assert.Equal(t, []dialog.Skill{dialog.SkillBuildPC}, cp.State.DialogStack)

	// The skill stays active across turns: the next user message routes
	// straight back to the build assistant.
	s, err := o.Stream(ctx, "t6", dialog.NewUserMessage("make it cheaper"))
	require.NoError(t, err)
	nodes, _ = drain(ctx, s)
	require.NoError(t, s.Err())
	require.NoError(t, s.Close())
	assert.Equal(t, []NodeID{NodeFetchUserInfo, NodeBuildPC}, nodes)
}

func TestOrchestrator_PersistsAfterEveryNode(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("hello there")},
	}}
	o, manager := newTestOrchestrator(t, model)
	ctx := context.Background()

	s, err := o.Stream(ctx, "t7", dialog.NewUserMessage("hi"))
	require.NoError(t, err)
	defer s.Close()

	for s.Next(ctx) {
		cp, err := manager.Store().Load(ctx, "t7")
		require.NoError(t, err)
		assert.Len(t, cp.State.Messages, len(s.State().Messages))
		assert.False(t, cp.UpdatedAt.IsZero())
	}
	require.NoError(t, s.Err())
}

func TestOrchestrator_SerializesTurnsPerThread(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("first answer")},
		{msg: dialog.NewAssistantMessage("second answer")},
	}}
	o, manager := newTestOrchestrator(t, model)
	ctx := context.Background()

	first, err := o.Stream(ctx, "t8", dialog.NewUserMessage("one"))
	require.NoError(t, err)

	second := make(chan *Stream, 1)
	go func() {
		s, err := o.Stream(ctx, "t8", dialog.NewUserMessage("two"))
		assert.NoError(t, err)
		second <- s
	}()

	select {
	case <-second:
		t.Fatal("second turn started while the first still held the thread")
	case <-time.After(50 * time.Millisecond):
	}

	drain(ctx, first)
	require.NoError(t, first.Err())
	require.NoError(t, first.Close())

	var s *Stream
	select {
	case s = <-second:
	case <-time.After(time.Second):
		t.Fatal("second turn never acquired the thread")
	}
	drain(ctx, s)
	require.NoError(t, s.Err())
	require.NoError(t, s.Close())

	cp, err := manager.Load(ctx, "t8")
	require.NoError(t, err)
	assert.Len(t, cp.State.Messages, 4)
}

func TestOrchestrator_ContextCanceled(t *testing.T) {
	model := &fakeModel{steps: []modelStep{
		{msg: dialog.NewAssistantMessage("never consumed")},
	}}
	o, _ := newTestOrchestrator(t, model)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := o.Stream(ctx, "t9", dialog.NewUserMessage("hi"))
	require.NoError(t, err)
	defer s.Close()

	cancel()
	assert.False(t, s.Next(ctx))
	require.ErrorIs(t, s.Err(), context.Canceled)
	assert.True(t, s.Pending())
}
