package thread

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates thread access, ensuring at most one in-flight turn per
// thread ID. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.CheckpointStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL. The default of 30s bounds how
// long a crashed replica can block a thread.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new thread Manager with the given checkpoint store.
func NewManager(store ports.CheckpointStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release(threadID) after unlocking.
func (m *Manager) acquire(threadID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[threadID]
	if !exists {
		entry = &lockEntry{}
		m.locks[threadID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(threadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[threadID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, threadID)
	}
}

// Load retrieves an existing thread checkpoint from the store.
func (m *Manager) Load(ctx context.Context, threadID string) (*dialog.Checkpoint, error) {
	var cp *dialog.Checkpoint
	err := m.WithLock(ctx, threadID, func(ctx context.Context) error {
		var err error
		cp, err = m.store.Load(ctx, threadID)
		return err
	})
	return cp, err
}

// LoadOrStart tries to load a thread. If not found, it initializes an empty
// checkpoint and persists it to reserve the ID.
func (m *Manager) LoadOrStart(ctx context.Context, threadID string) (*dialog.Checkpoint, error) {
	var cp *dialog.Checkpoint
	err := m.WithLock(ctx, threadID, func(ctx context.Context) error {
		var err error
		cp, err = m.store.Load(ctx, threadID)
		if err == nil {
			return nil
		}

		if err != dialog.ErrThreadNotFound {
			return fmt.Errorf("failed to check thread existence: %w", err)
		}

		cp = &dialog.Checkpoint{
			ThreadID:  threadID,
			State:     dialog.NewState(),
			UpdatedAt: time.Now().UTC(),
		}

		if err := m.store.Save(ctx, threadID, cp); err != nil {
			return fmt.Errorf("failed to initialize thread: %w", err)
		}
		return nil
	})
	return cp, err
}

// Save persists the thread checkpoint.
func (m *Manager) Save(ctx context.Context, threadID string, cp *dialog.Checkpoint) error {
	return m.WithLock(ctx, threadID, func(ctx context.Context) error {
		return m.store.Save(ctx, threadID, cp)
	})
}

// Delete removes the thread from the store.
func (m *Manager) Delete(ctx context.Context, threadID string) error {
	return m.WithLock(ctx, threadID, func(ctx context.Context) error {
		return m.store.Delete(ctx, threadID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying checkpoint store.
func (m *Manager) Store() ports.CheckpointStore {
	return m.store
}

// Acquire locks the thread until the returned release func is called.
// Store operations on the thread are then safe to run directly. Use
// WithLock unless the critical section has to span multiple calls, such as
// a streamed turn that persists after every node. The release func is
// idempotent.
func (m *Manager) Acquire(ctx context.Context, threadID string) (func(), error) {
	entry := m.acquire(threadID)
	entry.mu.Lock()

	var unlock ports.UnlockFunc
	if m.locker != nil {
		var err error
		unlock, err = m.locker.Lock(ctx, threadID, m.lockTTL)
		if err != nil {
			entry.mu.Unlock()
			m.release(threadID)
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if unlock != nil {
				// The turn's context may already be done; the lock
				// must still be released.
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
						"thread_id", threadID,
						"err", err,
					)
				}
			}
			entry.mu.Unlock()
			m.release(threadID)
		})
	}
	return release, nil
}

// WithLock executes fn while holding the lock for the thread. Nested calls
// for the same thread from the same goroutine deadlock; callers compose
// store operations inside a single fn instead.
func (m *Manager) WithLock(ctx context.Context, threadID string, fn func(context.Context) error) error {
	release, err := m.Acquire(ctx, threadID)
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx)
}
