// Package gemini adapts Google's Gemini API to the ChatModel port.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.0-flash"

// Model implements ports.ChatModel on top of a Gemini client.
type Model struct {
	client      Client
	name        string
	temperature *float32
	newCallID   func() string
}

// Option configures the Model.
type Option func(*Model)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(m *Model) {
		m.temperature = &t
	}
}

// withCallIDs overrides call ID generation, for deterministic tests.
func withCallIDs(fn func() string) Option {
	return func(m *Model) {
		m.newCallID = fn
	}
}

// NewModel creates a ChatModel speaking to the given Gemini model.
func NewModel(client Client, name string, opts ...Option) *Model {
	if name == "" {
		name = DefaultModelName
	}
	m := &Model{
		client: client,
		name:   name,
		newCallID: func() string {
			return "call_" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Invoke sends the request transcript to Gemini and converts the first
// candidate back into a dialog message.
func (m *Model) Invoke(ctx context.Context, req ports.ModelRequest) (dialog.Message, error) {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}
	if m.temperature != nil {
		config.Temperature = m.temperature
	}
	if tools := toTools(req.Tools); tools != nil {
		config.Tools = tools
	}

	resp, err := m.client.GenerateContent(ctx, m.name, toContents(req.Messages), config)
	if err != nil {
		return dialog.Message{}, fmt.Errorf("gemini generate: %w", err)
	}
	return fromResponse(resp, m.newCallID)
}
