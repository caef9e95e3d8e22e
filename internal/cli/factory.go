// Package cli assembles engines from configuration. The rigmate commands
// share it so serve, chat and mcp wire identical stacks.
package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/rigmate/rigmate"
	"github.com/rigmate/rigmate/internal/config"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/internal/metrics"
	"github.com/rigmate/rigmate/pkg/adapters/gemini"
	"github.com/rigmate/rigmate/pkg/adapters/memory"
	"github.com/rigmate/rigmate/pkg/adapters/redis"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/persistence/middleware"
	"github.com/rigmate/rigmate/pkg/ports"
	"github.com/rigmate/rigmate/pkg/thread"
)

// Options selects the optional engine collaborators.
type Options struct {
	// Debug logs every node transition and tool call.
	Debug bool
	// Metrics, when set, records node, tool and turn observations.
	Metrics *metrics.Collector
}

// NewEngine assembles an engine from the configuration: the Gemini model,
// the checkpoint store (Redis when an address is configured, in-memory
// otherwise) and the lifecycle hooks. The returned close function releases
// the store connection and must be called when the engine is done.
func NewEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*rigmate.Engine, func() error, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := gemini.Dial(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("dial gemini: %w", err)
	}
	model := gemini.NewModel(client, cfg.Gemini.Model, gemini.WithTemperature(cfg.Gemini.Temperature))

	store, locker, cleanup, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []rigmate.Option{
		rigmate.WithLogger(logger),
		rigmate.WithStore(store),
		rigmate.WithRecursionLimit(cfg.Graph.RecursionLimit),
		rigmate.WithEmptyRetries(cfg.Graph.EmptyRetries),
	}
	if locker != nil {
		engineOpts = append(engineOpts, rigmate.WithLocker(locker))
	}

	var hooks dialog.LifecycleHooks
	if opts.Debug {
		hooks = DebugHooks(logger)
	}
	if opts.Metrics != nil {
		hooks = hooks.Merge(opts.Metrics.Hooks())
	}
	engineOpts = append(engineOpts, rigmate.WithLifecycleHooks(hooks))

	eng, err := rigmate.New(model, engineOpts...)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}

// NewThreadManager opens the thread administration surface without a
// model, so listing, inspecting and removing threads works without a
// Gemini key.
func NewThreadManager(cfg config.Config, logger *slog.Logger) (*thread.Manager, func() error, error) {
	store, locker, cleanup, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	threadOpts := []thread.Option{thread.WithLogger(logger)}
	if locker != nil {
		threadOpts = append(threadOpts, thread.WithLocker(locker))
	}
	return thread.NewManager(store, threadOpts...), cleanup, nil
}

// newStore selects the checkpoint backend and layers the configured
// persistence middlewares on top. Redis brings a distributed locker along;
// the in-memory store needs none.
func newStore(cfg config.Config) (ports.CheckpointStore, ports.DistributedLocker, func() error, error) {
	var store ports.CheckpointStore
	var locker ports.DistributedLocker
	cleanup := func() error { return nil }

	if cfg.Redis.Addr == "" {
		store = memory.NewStore()
	} else {
		ttl, err := cfg.Redis.ParseTTL()
		if err != nil {
			return nil, nil, nil, err
		}
		rdb := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redis.NewFromClient(rdb, redis.WithTTL(ttl))
		locker = redis.NewLocker(rdb, "rigmate:")
		cleanup = rdb.Close
	}

	store, err := hardenStore(store, cfg.Persistence)
	if err != nil {
		_ = cleanup()
		return nil, nil, nil, err
	}
	return store, locker, cleanup, nil
}

// hardenStore applies the persistence middlewares. Encryption sits closest
// to the backend so masking runs on plaintext first.
func hardenStore(store ports.CheckpointStore, cfg config.Persistence) (ports.CheckpointStore, error) {
	if cfg.EncryptionKey != "" {
		active, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decode persistence encryption key: %w", err)
		}
		fallbacks := make([][]byte, 0, len(cfg.FallbackKeys))
		for _, k := range cfg.FallbackKeys {
			fb, err := base64.StdEncoding.DecodeString(k)
			if err != nil {
				return nil, fmt.Errorf("decode persistence fallback key: %w", err)
			}
			fallbacks = append(fallbacks, fb)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})
		if err != nil {
			return nil, err
		}
		store = mw(store)
	}
	if len(cfg.MaskPatterns) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.MaskPatterns)
		if err != nil {
			return nil, err
		}
		store = mw(store)
	}
	return store, nil
}

// NewLogger builds the process logger from the configured level. Debug
// forces verbose output regardless of the configuration.
func NewLogger(cfg config.Config, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(logging.ParseLevel(cfg.LogLevel))
}
