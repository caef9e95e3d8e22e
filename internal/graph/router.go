package graph

import (
	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/pkg/dialog"
)

// predicate inspects the state after a node ran and its update was applied.
type predicate func(st *dialog.State) bool

// rule is one row of the routing table. A nil predicate always matches.
type rule struct {
	label string
	when  predicate
	to    NodeID
}

// routes is the complete transition table. For each node the rules are
// tried in order and the first match wins; the last rule of every node is
// unconditional, so routing is total.
var routes = map[NodeID][]rule{
	NodeFetchUserInfo: {
		{label: "build_pc skill active", when: activeSkillIs(dialog.SkillBuildPC), to: NodeBuildPC},
		{label: "validate_price skill active", when: activeSkillIs(dialog.SkillValidatePrice), to: NodeValidatePrice},
		{label: "no skill active", to: NodePrimaryAssistant},
	},
	NodePrimaryAssistant: {
		{label: "no tool calls", when: noToolCalls, to: NodeEnd},
		{label: assistants.ToolToPCBuild, when: firstCallIs(assistants.ToolToPCBuild), to: NodeEnterBuildPC},
		{label: assistants.ToolToPriceValidation, when: firstCallIs(assistants.ToolToPriceValidation), to: NodeEnterValidatePrice},
		{label: "other tool calls", to: NodePrimaryAssistantTools},
	},
	NodePrimaryAssistantTools: {
		{label: "always", to: NodePrimaryAssistant},
	},
	NodeEnterBuildPC: {
		{label: "always", to: NodeBuildPC},
	},
	NodeBuildPC: {
		{label: "no tool calls", when: noToolCalls, to: NodeEnd},
		{label: assistants.ToolCompleteOrEscalate, when: anyCallIs(assistants.ToolCompleteOrEscalate), to: NodeLeaveSkill},
		{label: "tool calls", to: NodeBuildPCTools},
	},
	NodeBuildPCTools: {
		{label: "always", to: NodeBuildPC},
	},
	NodeEnterValidatePrice: {
		{label: "always", to: NodeValidatePrice},
	},
	NodeValidatePrice: {
		{label: "no tool calls", when: noToolCalls, to: NodeEnd},
		{label: assistants.ToolCompleteOrEscalate, when: anyCallIs(assistants.ToolCompleteOrEscalate), to: NodeLeaveSkill},
		{label: "tool calls", to: NodePriceValidationTools},
	},
	NodePriceValidationTools: {
		{label: "always", to: NodeValidatePrice},
	},
	NodeLeaveSkill: {
		{label: "always", to: NodePrimaryAssistant},
	},
}

// nodeOrder fixes the iteration order for inspection output.
var nodeOrder = []NodeID{
	NodeFetchUserInfo,
	NodePrimaryAssistant,
	NodePrimaryAssistantTools,
	NodeEnterBuildPC,
	NodeBuildPC,
	NodeBuildPCTools,
	NodeEnterValidatePrice,
	NodeValidatePrice,
	NodePriceValidationTools,
	NodeLeaveSkill,
}

// Route returns the node that follows from, given the state after from's
// update was applied. Unknown nodes terminate the turn.
func Route(from NodeID, st *dialog.State) NodeID {
	for _, r := range routes[from] {
		if r.when == nil || r.when(st) {
			return r.to
		}
	}
	return NodeEnd
}

// Edge is one outgoing transition of the routing table.
type Edge struct {
	From  NodeID
	To    NodeID
	Label string
}

// Transitions returns every edge of the routing table in a stable order,
// for rendering and for exhaustive tests.
func Transitions() []Edge {
	var edges []Edge
	for _, from := range nodeOrder {
		for _, r := range routes[from] {
			edges = append(edges, Edge{From: from, To: r.to, Label: r.label})
		}
	}
	return edges
}

func noToolCalls(st *dialog.State) bool {
	last, ok := st.LastMessage()
	return !ok || !last.HasToolCalls()
}

// firstCallIs reports whether the leading tool call carries the given
// name. Delegation only honors the first call of a batch.
func firstCallIs(name string) predicate {
	return func(st *dialog.State) bool {
		last, ok := st.LastMessage()
		return ok && len(last.ToolCalls) > 0 && last.ToolCalls[0].Name == name
	}
}

// anyCallIs reports whether any tool call of the batch carries the given
// name. Escalation is honored wherever it appears.
func anyCallIs(name string) predicate {
	return func(st *dialog.State) bool {
		last, ok := st.LastMessage()
		if !ok {
			return false
		}
		for _, call := range last.ToolCalls {
			if call.Name == name {
				return true
			}
		}
		return false
	}
}

func activeSkillIs(skill dialog.Skill) predicate {
	return func(st *dialog.State) bool {
		top, ok := st.ActiveSkill()
		return ok && top == skill
	}
}
