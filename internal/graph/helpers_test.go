package graph

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/pkg/adapters/memory"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
	"github.com/rigmate/rigmate/pkg/registry"
	"github.com/rigmate/rigmate/pkg/thread"
)

func testTurnCtx() turnCtx {
	return turnCtx{threadID: "thread-under-test", logger: logging.NewNop()}
}

// modelStep is one scripted model response.
type modelStep struct {
	msg dialog.Message
	err error
}

// fakeModel replays a script of responses and records every request it
// received.
type fakeModel struct {
	mu       sync.Mutex
	steps    []modelStep
	requests []ports.ModelRequest
}

func (m *fakeModel) Invoke(_ context.Context, req ports.ModelRequest) (dialog.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.steps) == 0 {
		return dialog.Message{}, fmt.Errorf("unexpected model invocation #%d", len(m.requests))
	}
	next := m.steps[0]
	m.steps = m.steps[1:]
	return next.msg, next.err
}

func (m *fakeModel) recorded() []ports.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.ModelRequest(nil), m.requests...)
}

// loopingModel answers every invocation with the same tool call, which
// keeps the graph cycling between an assistant and its tools node.
type loopingModel struct {
	call dialog.ToolCall
}

func (m loopingModel) Invoke(context.Context, ports.ModelRequest) (dialog.Message, error) {
	return dialog.NewAssistantMessage("", m.call), nil
}

func testBuildTools() *registry.Registry {
	reg := registry.New()
	reg.Register(registry.Tool{
		Name:        "pc_builder",
		Description: "Assembles a build from the catalog.",
		Run: func(context.Context, map[string]any) (any, error) {
			return map[string]any{"cpu": "Ryzen 5 7600", "gpu": "RTX 4070"}, nil
		},
	})
	return reg
}

func testPriceTools() *registry.Registry {
	reg := registry.New()
	reg.Register(registry.Tool{
		Name:        "component_prices",
		Description: "Fetches catalog prices.",
		Run: func(context.Context, map[string]any) (any, error) {
			return map[string]any{"RTX 4070": 549.99}, nil
		},
	})
	return reg
}

func newTestGraph(t *testing.T, model ports.ChatModel) *Graph {
	t.Helper()
	g, err := New(Config{
		Model:      model,
		Assistants: assistants.NewSet(testBuildTools(), testPriceTools()),
	})
	require.NoError(t, err)
	return g
}

func newTestOrchestrator(t *testing.T, model ports.ChatModel, opts ...OrchestratorOption) (*Orchestrator, *thread.Manager) {
	t.Helper()
	manager := thread.NewManager(memory.NewStore())
	return NewOrchestrator(newTestGraph(t, model), manager, opts...), manager
}

// drain consumes the stream and returns the visited nodes and the snapshot
// taken after each of them.
func drain(ctx context.Context, s *Stream) (nodes []NodeID, snaps []*dialog.State) {
	for s.Next(ctx) {
		nodes = append(nodes, s.Node())
		snaps = append(snaps, s.State())
	}
	return nodes, snaps
}

func delegateCall(id, name string, args map[string]any) dialog.ToolCall {
	if args == nil {
		args = map[string]any{}
	}
	return dialog.ToolCall{ID: id, Name: name, Args: args}
}
