package mermaid

import (
	"fmt"
	"strings"

	"github.com/rigmate/rigmate/internal/graph"
)

// Overlay carries dynamic thread state to visualize on top of the static
// routing table.
type Overlay struct {
	// Pending is the node a suspended turn will run next.
	Pending string
}

// Render produces a Mermaid flowchart (graph TD) of the dialog graph.
// It applies semantic styling:
// - fetch_user_info and __end__: ((Circle))
// - tools nodes: [[Subroutine]]
// - entry/leave handoff nodes: [/Parallelogram/]
// - assistants: [Rectangle]
func Render(edges []graph.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[graph.NodeID]bool)
	declare := func(id graph.NodeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		opener, closer := "[", "]"
		switch {
		case id == graph.NodeFetchUserInfo || id == graph.NodeEnd:
			opener, closer = "((", "))"
		case strings.HasSuffix(string(id), "_tools"):
			opener, closer = "[[", "]]"
		case strings.HasPrefix(string(id), "enter_") || id == graph.NodeLeaveSkill:
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeID(id), opener, id, closer))
	}

	for _, e := range edges {
		declare(e.From)
	}
	sb.WriteString(fmt.Sprintf("    START((\"start\")) --> %s\n", sanitizeID(graph.NodeFetchUserInfo)))

	for _, e := range edges {
		declare(e.To)
		arrow := "-->"
		if e.Label != "" && e.Label != "always" {
			safeLabel := strings.ReplaceAll(e.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeID(e.From), arrow, sanitizeID(e.To)))
	}

	if overlay != nil && overlay.Pending != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef pending fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s pending;\n", sanitizeID(graph.NodeID(overlay.Pending))))
	}

	return sb.String()
}

func sanitizeID(id graph.NodeID) string {
	s := strings.ReplaceAll(string(id), ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
