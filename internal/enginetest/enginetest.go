// Package enginetest provides a scripted ports.ChatEngine for testing the
// transport adapters without a model or a graph.
package enginetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// Step is one node visit a scripted Stream replays.
type Step struct {
	Node  string
	State *dialog.State
}

// Stream replays a fixed sequence of steps, then reports the configured
// pending flag and error, mirroring a real turn stream's contract.
type Stream struct {
	Steps       []Step
	Interrupted bool  // reported by Pending once the steps are consumed
	Fail        error // reported by Err once Next returns false

	idx    int
	closed bool
}

func (s *Stream) Next(context.Context) bool {
	if s.idx >= len(s.Steps) {
		return false
	}
	s.idx++
	return true
}

func (s *Stream) Node() string { return s.Steps[s.idx-1].Node }

func (s *Stream) State() *dialog.State { return s.Steps[s.idx-1].State }

func (s *Stream) Pending() bool { return s.Interrupted }

func (s *Stream) Err() error { return s.Fail }

func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether the adapter released the stream.
func (s *Stream) Closed() bool { return s.closed }

// TurnSteps fabricates the node visits of a plain question-answer turn.
func TurnSteps(reply string) []Step {
	answered := dialog.NewState()
	answered.Append(dialog.NewUserMessage("hi"), dialog.NewAssistantMessage(reply))
	return []Step{
		{Node: "fetch_user_info", State: dialog.NewState()},
		{Node: "primary_assistant", State: answered},
	}
}

// Engine hands out scripted streams in order and records every call, so a
// test can assert both what the adapter asked for and what it did with
// the answer.
type Engine struct {
	mu      sync.Mutex
	streams []*Stream
	calls   []string
	threads map[string]*dialog.Checkpoint
}

var _ ports.ChatEngine = (*Engine)(nil)

// New creates an engine that serves the given streams to Stream and
// Resume calls, in order.
func New(streams ...*Stream) *Engine {
	return &Engine{
		streams: streams,
		threads: make(map[string]*dialog.Checkpoint),
	}
}

// Seed stores a checkpoint for the thread administration methods to find.
func (e *Engine) Seed(cp *dialog.Checkpoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.threads[cp.ThreadID] = cp
}

// Calls returns the recorded call log.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *Engine) next() (*Stream, error) {
	if len(e.streams) == 0 {
		return nil, fmt.Errorf("no scripted stream left")
	}
	s := e.streams[0]
	e.streams = e.streams[1:]
	return s, nil
}

func (e *Engine) Stream(_ context.Context, threadID, message string) (ports.TurnStream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "stream "+threadID+" "+message)
	return e.next()
}

func (e *Engine) Resume(_ context.Context, threadID string) (ports.TurnStream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, "resume "+threadID)
	return e.next()
}

func (e *Engine) Threads(context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []string
	for id := range e.threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (e *Engine) Thread(_ context.Context, threadID string) (*dialog.Checkpoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp, ok := e.threads[threadID]
	if !ok {
		return nil, dialog.ErrThreadNotFound
	}
	return cp, nil
}

func (e *Engine) DeleteThread(_ context.Context, threadID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.threads[threadID]; !ok {
		return dialog.ErrThreadNotFound
	}
	delete(e.threads, threadID)
	return nil
}
