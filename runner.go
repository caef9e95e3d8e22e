package rigmate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Runner handles an interactive conversation loop using provided IO.
// This allows for easy testing and integration with different frontends
// (CLI, TUI, etc).
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Headless strips prompts and banners for strict line-based IO; errors
	// then abort the loop instead of being rendered as messages.
	Headless bool

	// Renderer transforms assistant replies before outputting them. This
	// allows for TUI rendering (markdown to ANSI) without coupling the
	// core package.
	Renderer ContentRenderer

	// ThreadID continues an existing conversation. A fresh ID is minted
	// when empty.
	ThreadID string
}

// ContentRenderer is a function that transforms content before output.
type ContentRenderer func(string) (string, error)

// Run reads user messages line by line and prints the assistant's reply
// for each, until EOF or an exit command. Failed turns leave the thread's
// last checkpoint intact, so the conversation continues on the next line.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	threadID := r.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	lineReader := bufio.NewReader(r.Input)
	if !r.Headless {
		fmt.Fprintf(r.Output, "Chatting on thread %s. Type 'exit' to quit.\n", threadID)
	}

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		line, err := lineReader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		atEOF := errors.Is(err, io.EOF)

		input := strings.TrimSpace(line)
		if input == "exit" || input == "quit" {
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		}
		if input != "" {
			reply, err := engine.Respond(ctx, threadID, input)
			switch {
			case err != nil && r.Headless:
				return err
			case err != nil:
				// The checkpoint before the failing node survives; the
				// user can simply re-issue the request.
				fmt.Fprintln(r.Output, "Something went wrong, please try again.")
			default:
				fmt.Fprintln(r.Output, r.render(reply))
			}
		}

		if atEOF {
			return nil
		}
	}
}

func (r *Runner) render(content string) string {
	if r.Renderer == nil {
		return content
	}
	out, err := r.Renderer(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
