package graph

import (
	"context"
	"fmt"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// DefaultEmptyRetries bounds how often an assistant node re-prompts the
// model after a non-actionable response before the turn fails.
const DefaultEmptyRetries = 8

// nudge is appended to the model input, not to the dialog state, when the
// model returns nothing the router can act on.
const nudge = "Respond with a real output."

// assistantNode invokes the model with the binding's prompt and tool
// surface. A response without tool calls and without text is re-prompted
// up to maxRetries times; the retry prompt never reaches the persisted
// transcript.
func assistantNode(model ports.ChatModel, b assistants.Binding, maxRetries int) nodeFunc {
	return func(ctx context.Context, tc turnCtx, st *dialog.State) (Update, error) {
		msgs := st.Messages
		for attempt := 1; ; attempt++ {
			resp, err := model.Invoke(ctx, ports.ModelRequest{
				System:   b.RenderSystem(st.UserInfo),
				Messages: msgs,
				Tools:    b.Tools,
			})
			if err != nil {
				return Update{}, fmt.Errorf("invoke %s: %w", b.Name, err)
			}

			if resp.Actionable() {
				resp.Role = dialog.RoleAssistant
				return Update{Messages: []dialog.Message{resp}}, nil
			}

			if attempt >= maxRetries {
				return Update{}, fmt.Errorf("%w: %s produced no actionable output after %d attempts",
					dialog.ErrEmptyResponse, b.Name, attempt)
			}
			tc.logger.Debug("assistant returned empty response, re-prompting",
				"assistant", b.Name,
				"thread_id", tc.threadID,
				"attempt", attempt,
			)
			msgs = append(msgs[:len(msgs):len(msgs)], dialog.NewUserMessage(nudge))
		}
	}
}
