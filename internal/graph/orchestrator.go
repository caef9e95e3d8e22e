package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/thread"
)

// DefaultRecursionLimit bounds how many nodes a single run may execute
// before it is aborted. The checkpoint written after the last completed
// node survives the abort, so the turn can be resumed.
const DefaultRecursionLimit = 50

// Orchestrator drives turns through the graph, one locked thread at a
// time.
type Orchestrator struct {
	graph   *Graph
	threads *thread.Manager
	limit   int
	logger  *slog.Logger
}

// OrchestratorOption configures the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRecursionLimit overrides the per-run node budget.
func WithRecursionLimit(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator over the given graph and thread
// manager.
func NewOrchestrator(g *Graph, threads *thread.Manager, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		graph:   g,
		threads: threads,
		limit:   DefaultRecursionLimit,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stream appends the user message to the thread and starts a new turn.
// The returned Stream owns the thread lock; the caller must Close it.
func (o *Orchestrator) Stream(ctx context.Context, threadID string, input dialog.Message) (*Stream, error) {
	return o.open(ctx, threadID, &input)
}

// Resume continues a turn that was interrupted mid-graph. If the thread
// has no pending node the stream is already exhausted; resuming a
// completed turn is a no-op, not an error.
func (o *Orchestrator) Resume(ctx context.Context, threadID string) (*Stream, error) {
	return o.open(ctx, threadID, nil)
}

// Run drains a full turn and returns the final state.
func (o *Orchestrator) Run(ctx context.Context, threadID string, input dialog.Message) (*dialog.State, error) {
	s, err := o.Stream(ctx, threadID, input)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for s.Next(ctx) {
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s.State(), nil
}

func (o *Orchestrator) open(ctx context.Context, threadID string, input *dialog.Message) (*Stream, error) {
	release, err := o.threads.Acquire(ctx, threadID)
	if err != nil {
		return nil, err
	}

	store := o.threads.Store()
	cp, err := store.Load(ctx, threadID)
	switch {
	case err == nil:
	case errors.Is(err, dialog.ErrThreadNotFound) && input != nil:
		cp = &dialog.Checkpoint{ThreadID: threadID, State: dialog.NewState(), UpdatedAt: time.Now().UTC()}
	default:
		release()
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	next := NodeEnd
	if input != nil {
		msg := *input
		if msg.Role == "" {
			msg.Role = dialog.RoleUser
		}
		cp.State.Append(msg)
		next = o.graph.Entry()
	} else if cp.Pending() {
		next = NodeID(cp.Next)
	}

	return &Stream{
		o:       o,
		tc:      turnCtx{threadID: threadID, hooks: o.graph.hooks, logger: o.logger},
		cp:      cp,
		next:    next,
		release: release,
	}, nil
}

// Stream walks the graph one node per Next call and persists a checkpoint
// after every node, so the thread survives an interruption at any point.
// It holds the thread lock from creation until Close.
type Stream struct {
	o       *Orchestrator
	tc      turnCtx
	cp      *dialog.Checkpoint
	next    NodeID
	node    NodeID
	snap    *dialog.State
	steps   int
	err     error
	done    bool
	closed  bool
	release func()
}

// Next advances the turn by one node. It returns false when the turn is
// complete, the run failed or the node budget is exhausted; Err separates
// the cases.
func (s *Stream) Next(ctx context.Context) bool {
	if s.done || s.err != nil || s.closed {
		return false
	}
	if s.next == NodeEnd {
		s.done = true
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.steps >= s.o.limit {
		s.err = fmt.Errorf("%w: %d nodes executed without completing the turn",
			dialog.ErrRecursionLimit, s.steps)
		return false
	}
	s.steps++

	node := s.next
	up, err := s.o.graph.step(ctx, s.tc, node, s.cp.State)
	if err != nil {
		s.err = fmt.Errorf("node %s: %w", node, err)
		return false
	}
	if err := applyUpdate(s.cp.State, up); err != nil {
		s.err = fmt.Errorf("node %s: %w", node, err)
		return false
	}

	next := Route(node, s.cp.State)
	s.cp.Next = ""
	if next != NodeEnd {
		s.cp.Next = string(next)
	}
	s.cp.UpdatedAt = time.Now().UTC()
	if err := s.o.threads.Store().Save(ctx, s.tc.threadID, s.cp); err != nil {
		s.err = fmt.Errorf("persist checkpoint after %s: %w", node, err)
		return false
	}

	s.node = node
	s.next = next
	s.snap = s.cp.State.Clone()
	return true
}

// Node returns the ID of the node that produced the current snapshot.
func (s *Stream) Node() NodeID {
	return s.node
}

// State returns the snapshot taken after the most recent node. Snapshots
// are independent copies; earlier ones are not affected by later steps.
func (s *Stream) State() *dialog.State {
	return s.snap
}

// Pending reports whether the turn still has a node to run, which is the
// case after an interrupted or aborted run.
func (s *Stream) Pending() bool {
	return s.next != NodeEnd
}

// Err returns the error that stopped the stream, if any. A completed turn
// leaves it nil.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the thread lock. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.release()
	return nil
}
