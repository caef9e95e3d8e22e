package rigmate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/internal/graph"
	"github.com/rigmate/rigmate/internal/tools"
	"github.com/rigmate/rigmate/pkg/adapters/memory"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
	"github.com/rigmate/rigmate/pkg/registry"
	"github.com/rigmate/rigmate/pkg/thread"
)

// Version is the library version, reported by the CLI and the servers.
const Version = "0.1.0"

// Engine is the high-level entry point for the rigmate library. It wires
// the assistant roster, the dialog graph and the thread manager behind a
// small conversational API.
type Engine struct {
	orch    *graph.Orchestrator
	threads *thread.Manager
	logger  *slog.Logger

	store      ports.CheckpointStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	userInfo   ports.UserInfoSource
	hooks      dialog.LifecycleHooks
	limit      int
	retries    int
	buildTools *registry.Registry
	priceTools *registry.Registry
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a checkpoint backend. The default is the in-memory
// store, which does not survive a restart.
func WithStore(store ports.CheckpointStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed thread locking for multi-replica
// deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL bounds how long a crashed replica can hold a thread lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks dialog.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRecursionLimit overrides the per-turn node budget.
func WithRecursionLimit(n int) Option {
	return func(e *Engine) {
		e.limit = n
	}
}

// WithEmptyRetries overrides how often an assistant re-prompts the model
// after a non-actionable response before the turn fails.
func WithEmptyRetries(n int) Option {
	return func(e *Engine) {
		e.retries = n
	}
}

// WithUserInfoSource supplies profile data for threads. Without one, the
// engine derives user info from the conversation itself.
func WithUserInfoSource(src ports.UserInfoSource) Option {
	return func(e *Engine) {
		e.userInfo = src
	}
}

// WithBuildTools replaces the PC build assistant's tool set. The default
// is the catalog-backed builder and question-answer tools.
func WithBuildTools(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.buildTools = reg
	}
}

// WithPriceTools replaces the price validation assistant's tool set. The
// default covers price quotes, bottleneck estimates and game requirement
// checks against the catalog.
func WithPriceTools(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.priceTools = reg
	}
}

// New initializes a rigmate Engine around the given chat model. The model
// is the only required collaborator; every other dependency defaults to a
// self-contained implementation.
func New(model ports.ChatModel, opts ...Option) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("rigmate: a chat model is required")
	}

	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.buildTools == nil || eng.priceTools == nil {
		catalog := tools.NewCatalog()
		if eng.buildTools == nil {
			eng.buildTools = tools.BuildRegistry(catalog)
		}
		if eng.priceTools == nil {
			eng.priceTools = tools.PriceRegistry(catalog)
		}
	}

	g, err := graph.New(graph.Config{
		Model:          model,
		Assistants:     assistants.NewSet(eng.buildTools, eng.priceTools),
		UserInfoSource: eng.userInfo,
		Hooks:          eng.hooks,
		Logger:         eng.logger,
		EmptyRetries:   eng.retries,
	})
	if err != nil {
		return nil, err
	}

	threadOpts := []thread.Option{thread.WithLogger(eng.logger)}
	if eng.locker != nil {
		threadOpts = append(threadOpts, thread.WithLocker(eng.locker))
	}
	if eng.lockTTL > 0 {
		threadOpts = append(threadOpts, thread.WithLockTTL(eng.lockTTL))
	}
	eng.threads = thread.NewManager(eng.store, threadOpts...)

	orchOpts := []graph.OrchestratorOption{graph.WithLogger(eng.logger)}
	if eng.limit > 0 {
		orchOpts = append(orchOpts, graph.WithRecursionLimit(eng.limit))
	}
	eng.orch = graph.NewOrchestrator(g, eng.threads, orchOpts...)

	return eng, nil
}

// Engine implements the port the transport adapters are written against.
var _ ports.ChatEngine = (*Engine)(nil)

// Stream appends the message to the thread and starts a new turn. The
// returned stream yields one state snapshot per executed node and holds
// the thread lock until Close.
func (e *Engine) Stream(ctx context.Context, threadID, message string) (ports.TurnStream, error) {
	s, err := e.orch.Stream(ctx, threadID, dialog.NewUserMessage(message))
	if err != nil {
		return nil, err
	}
	return turnStream{s}, nil
}

// Resume continues a turn that was interrupted mid-graph. Resuming a
// thread with nothing pending yields an immediately exhausted stream.
func (e *Engine) Resume(ctx context.Context, threadID string) (ports.TurnStream, error) {
	s, err := e.orch.Resume(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return turnStream{s}, nil
}

// Respond drives one full turn: it streams the message, drains the
// snapshots, resumes while steps are pending, and returns the assistant's
// final reply. A failed turn returns the error; the thread keeps the
// checkpoint from the last completed node and may be driven again.
func (e *Engine) Respond(ctx context.Context, threadID, message string) (string, error) {
	s, err := e.orch.Stream(ctx, threadID, dialog.NewUserMessage(message))
	if err != nil {
		return "", err
	}
	res, err := drain(ctx, s)
	if err != nil {
		return "", err
	}
	for res.pending {
		s, err := e.orch.Resume(ctx, threadID)
		if err != nil {
			return "", err
		}
		if res, err = drain(ctx, s); err != nil {
			return "", err
		}
	}
	if res.last == nil {
		return "", fmt.Errorf("turn produced no output")
	}
	return res.last.LastReply(), nil
}

type turnResult struct {
	last    *dialog.State
	pending bool
}

func drain(ctx context.Context, s *graph.Stream) (turnResult, error) {
	defer s.Close()

	var last *dialog.State
	for s.Next(ctx) {
		last = s.State()
	}
	if err := s.Err(); err != nil {
		return turnResult{}, err
	}
	return turnResult{last: last, pending: s.Pending()}, nil
}

// Threads lists the IDs of all stored conversations.
func (e *Engine) Threads(ctx context.Context) ([]string, error) {
	return e.threads.List(ctx)
}

// Thread loads one conversation checkpoint. Returns
// dialog.ErrThreadNotFound for unknown IDs.
func (e *Engine) Thread(ctx context.Context, threadID string) (*dialog.Checkpoint, error) {
	return e.threads.Load(ctx, threadID)
}

// DeleteThread removes a conversation and its checkpoint.
func (e *Engine) DeleteThread(ctx context.Context, threadID string) error {
	return e.threads.Delete(ctx, threadID)
}

// turnStream adapts the orchestrator's stream to the TurnStream port.
type turnStream struct {
	s *graph.Stream
}

func (t turnStream) Next(ctx context.Context) bool { return t.s.Next(ctx) }
func (t turnStream) Node() string                  { return string(t.s.Node()) }
func (t turnStream) State() *dialog.State          { return t.s.State() }
func (t turnStream) Pending() bool                 { return t.s.Pending() }
func (t turnStream) Err() error                    { return t.s.Err() }
func (t turnStream) Close() error                  { return t.s.Close() }
