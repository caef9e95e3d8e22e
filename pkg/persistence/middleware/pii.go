package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

type piiMiddleware struct {
	next     ports.CheckpointStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that redacts pattern matches from
// persisted transcripts: message content, tool arguments and user info.
// Masking is one-way; the in-memory state the engine works on is untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		compiled, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = compiled
	}
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, threadID string, cp *dialog.Checkpoint) error {
	// Deep clone to avoid side effects on the state the engine keeps using.
	masked := cp.Clone()
	if masked.State != nil {
		m.maskState(masked.State)
	}
	return m.next.Save(ctx, threadID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, threadID string) (*dialog.Checkpoint, error) {
	return m.next.Load(ctx, threadID)
}

func (m *piiMiddleware) Delete(ctx context.Context, threadID string) error {
	return m.next.Delete(ctx, threadID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func (m *piiMiddleware) maskState(st *dialog.State) {
	st.UserInfo = m.mask(st.UserInfo)
	for i := range st.Messages {
		msg := &st.Messages[i]
		msg.Content = m.mask(msg.Content)
		for b := range msg.Blocks {
			msg.Blocks[b].Text = m.mask(msg.Blocks[b].Text)
		}
		for c := range msg.ToolCalls {
			m.maskArgs(msg.ToolCalls[c].Args)
		}
	}
}

// maskArgs redacts string values; tool arguments often echo user input.
func (m *piiMiddleware) maskArgs(args map[string]any) {
	for k, v := range args {
		switch val := v.(type) {
		case string:
			args[k] = m.mask(val)
		case map[string]any:
			m.maskArgs(val)
		}
	}
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}
