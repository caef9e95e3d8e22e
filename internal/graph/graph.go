package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/internal/logging"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// Config wires the graph's collaborators. Model and Assistants are
// required; everything else has a working default.
type Config struct {
	Model          ports.ChatModel
	Assistants     assistants.Set
	UserInfoSource ports.UserInfoSource
	Hooks          dialog.LifecycleHooks
	Logger         *slog.Logger
	EmptyRetries   int
}

// Graph binds the node implementations to the routing table.
type Graph struct {
	nodes  map[NodeID]nodeFunc
	hooks  dialog.LifecycleHooks
	logger *slog.Logger
}

// New builds the dialog graph and checks it against the routing table, so
// a node/route mismatch fails at startup rather than mid-turn.
func New(cfg Config) (*Graph, error) {
	if cfg.Model == nil {
		return nil, errors.New("graph: model is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.EmptyRetries <= 0 {
		cfg.EmptyRetries = DefaultEmptyRetries
	}

	set := cfg.Assistants
	g := &Graph{
		hooks:  cfg.Hooks,
		logger: cfg.Logger,
		nodes: map[NodeID]nodeFunc{
			NodeFetchUserInfo:         userInfoNode(cfg.UserInfoSource),
			NodePrimaryAssistant:      assistantNode(cfg.Model, set.Primary, cfg.EmptyRetries),
			NodePrimaryAssistantTools: toolsNode(NodePrimaryAssistantTools, set.Primary.Registry),
			NodeEnterBuildPC:          entryNode(set.BuildPC.Name, dialog.SkillBuildPC),
			NodeBuildPC:               assistantNode(cfg.Model, set.BuildPC, cfg.EmptyRetries),
			NodeBuildPCTools:          toolsNode(NodeBuildPCTools, set.BuildPC.Registry),
			NodeEnterValidatePrice:    entryNode(set.ValidatePrice.Name, dialog.SkillValidatePrice),
			NodeValidatePrice:         assistantNode(cfg.Model, set.ValidatePrice, cfg.EmptyRetries),
			NodePriceValidationTools:  toolsNode(NodePriceValidationTools, set.ValidatePrice.Registry),
			NodeLeaveSkill:            leaveSkillNode(),
		},
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Entry returns the node every turn starts from.
func (g *Graph) Entry() NodeID {
	return NodeFetchUserInfo
}

// validate cross-checks the node map against the routing table.
func (g *Graph) validate() error {
	for from, rules := range routes {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: route from unknown node %q", from)
		}
		for _, r := range rules {
			if r.to == NodeEnd {
				continue
			}
			if _, ok := g.nodes[r.to]; !ok {
				return fmt.Errorf("graph: route %q -> %q targets unknown node", from, r.to)
			}
		}
	}
	for id := range g.nodes {
		if _, ok := routes[id]; !ok {
			return fmt.Errorf("graph: node %q has no outgoing routes", id)
		}
	}
	return nil
}

// step runs one node against the state and returns its update, firing the
// lifecycle hooks around it.
func (g *Graph) step(ctx context.Context, tc turnCtx, id NodeID, st *dialog.State) (Update, error) {
	fn, ok := g.nodes[id]
	if !ok {
		return Update{}, fmt.Errorf("graph: unknown node %q", id)
	}

	start := time.Now()
	if g.hooks.OnNodeEnter != nil {
		g.hooks.OnNodeEnter(dialog.NodeEvent{
			EventBase: dialog.EventBase{Timestamp: start, Type: dialog.EventNodeEnter, ThreadID: tc.threadID},
			NodeID:    string(id),
		})
	}

	up, err := fn(ctx, tc, st)

	if g.hooks.OnNodeLeave != nil {
		g.hooks.OnNodeLeave(dialog.NodeEvent{
			EventBase: dialog.EventBase{Timestamp: time.Now(), Type: dialog.EventNodeLeave, ThreadID: tc.threadID},
			NodeID:    string(id),
			Duration:  time.Since(start),
		})
	}
	g.logger.Debug("node executed",
		"node", id,
		"thread_id", tc.threadID,
		"duration", time.Since(start),
	)
	return up, err
}
