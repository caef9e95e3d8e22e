package dialog

import "time"

// State represents the current snapshot of one conversation thread.
type State struct {
	// Messages is the ordered, append-only conversation history. New turn
	// output is concatenated onto it, never replacing prior entries.
	Messages []Message `json:"messages"`

	// UserInfo holds opaque profile data gathered for the thread.
	UserInfo string `json:"user_info,omitempty"`

	// DialogStack records which skills are active, innermost last. It is
	// mutated only through UpdateStack.
	DialogStack []Skill `json:"dialog_stack,omitempty"`
}

// NewState creates an empty conversation state.
func NewState() *State {
	return &State{}
}

// Append adds messages to the history in order.
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// LastMessage returns the most recent message, or false when the history is
// empty.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastReply returns the text of the most recent assistant message, or ""
// when no assistant has spoken yet.
func (s *State) LastReply() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Text()
		}
	}
	return ""
}

// ActiveSkill returns the innermost skill on the dialog stack, or false when
// no skill is active.
func (s *State) ActiveSkill() (Skill, bool) {
	if len(s.DialogStack) == 0 {
		return "", false
	}
	return s.DialogStack[len(s.DialogStack)-1], true
}

// Clone returns a deep copy of the state. Message values are copied by value;
// their slices are reallocated so the copies share nothing mutable.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{UserInfo: s.UserInfo}
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		for i, m := range s.Messages {
			out.Messages[i] = cloneMessage(m)
		}
	}
	if s.DialogStack != nil {
		out.DialogStack = make([]Skill, len(s.DialogStack))
		copy(out.DialogStack, s.DialogStack)
	}
	return out
}

func cloneMessage(m Message) Message {
	if m.Blocks != nil {
		blocks := make([]Block, len(m.Blocks))
		copy(blocks, m.Blocks)
		m.Blocks = blocks
	}
	if m.ToolCalls != nil {
		calls := make([]ToolCall, len(m.ToolCalls))
		for i, c := range m.ToolCalls {
			if c.Args != nil {
				args := make(map[string]any, len(c.Args))
				for k, v := range c.Args {
					args[k] = v
				}
				c.Args = args
			}
			calls[i] = c
		}
		m.ToolCalls = calls
	}
	return m
}

// Checkpoint is the persisted form of a thread: the state plus the node the
// orchestrator would run next. An empty Next means the last turn ran to
// completion and nothing is pending.
type Checkpoint struct {
	ThreadID  string    `json:"thread_id"`
	State     *State    `json:"state"`
	Next      string    `json:"next,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending reports whether the thread has an unfinished turn.
func (c *Checkpoint) Pending() bool {
	return c != nil && c.Next != ""
}

// Clone returns a deep copy of the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	out := *c
	out.State = c.State.Clone()
	return &out
}
