package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/ports"
)

// ToolFunc is the signature for a tool implementation. It receives a
// context and the decoded arguments, and returns a result or an error.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Tool couples an executable function with the schema advertised to the
// model. Schema may be nil for tools that take no arguments.
type Tool struct {
	Name        string
	Description string
	Schema      *openapi3.Schema
	Run         ToolFunc
}

// Registry manages the tools available to a single assistant.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name]; !ok {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Execute looks up a tool by name, validates the arguments against its
// schema and executes it. Returns an error if the tool is not found or
// the arguments do not conform.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	if t.Schema != nil {
		if args == nil {
			args = map[string]any{}
		}
		if err := t.Schema.VisitJSON(args); err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
	}
	return t.Run(ctx, args)
}

// Specs returns the tool surface in registration order, ready to be bound
// to a model request.
func (r *Registry) Specs() []ports.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]ports.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, ports.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Schema:      t.Schema,
		})
	}
	return specs
}
