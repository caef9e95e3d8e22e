package tui

import (
	"github.com/charmbracelet/glamour"

	"github.com/rigmate/rigmate"
)

// NewRenderer returns a ContentRenderer that formats markdown replies for
// the terminal. Glamour picks a light or dark style from the background.
func NewRenderer() rigmate.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Plain passthrough when the terminal cannot be probed.
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}
