package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rigmate/rigmate/internal/assistants"
	"github.com/rigmate/rigmate/pkg/dialog"
)

func routeState(stack []dialog.Skill, last ...dialog.Message) *dialog.State {
	st := dialog.NewState()
	st.DialogStack = stack
	st.Append(last...)
	return st
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name  string
		from  NodeID
		state *dialog.State
		want  NodeID
	}{
		{
			name:  "user info routes to primary without active skill",
			from:  NodeFetchUserInfo,
			state: routeState(nil, dialog.NewUserMessage("hi")),
			want:  NodePrimaryAssistant,
		},
		{
			name:  "user info resumes active skill",
			from:  NodeFetchUserInfo,
			state: routeState([]dialog.Skill{dialog.SkillBuildPC}, dialog.NewUserMessage("and a quieter case")),
			want:  NodeBuildPC,
		},
		{
			name: "user info resumes top of stack",
			from: NodeFetchUserInfo,
			state: routeState(
				[]dialog.Skill{dialog.SkillBuildPC, dialog.SkillValidatePrice},
				dialog.NewUserMessage("is that price fair?"),
			),
			want: NodeValidatePrice,
		},
		{
			name:  "primary without tool calls ends the turn",
			from:  NodePrimaryAssistant,
			state: routeState(nil, dialog.NewAssistantMessage("hello!")),
			want:  NodeEnd,
		},
		{
			name: "primary delegates to build pc",
			from: NodePrimaryAssistant,
			state: routeState(nil, dialog.NewAssistantMessage("",
				delegateCall("c1", assistants.ToolToPCBuild, nil))),
			want: NodeEnterBuildPC,
		},
		{
			name: "primary delegates to price validation",
			from: NodePrimaryAssistant,
			state: routeState(nil, dialog.NewAssistantMessage("",
				delegateCall("c1", assistants.ToolToPriceValidation, nil))),
			want: NodeEnterValidatePrice,
		},
		{
			name: "primary falls back to its tools node on unknown calls",
			from: NodePrimaryAssistant,
			state: routeState(nil, dialog.NewAssistantMessage("",
				delegateCall("c1", "web_search", nil))),
			want: NodePrimaryAssistantTools,
		},
		{
			name: "delegation only honors the first call",
			from: NodePrimaryAssistant,
			state: routeState(nil, dialog.NewAssistantMessage("",
				delegateCall("c1", "web_search", nil),
				delegateCall("c2", assistants.ToolToPCBuild, nil))),
			want: NodePrimaryAssistantTools,
		},
		{
			name:  "primary tools loop back",
			from:  NodePrimaryAssistantTools,
			state: routeState(nil),
			want:  NodePrimaryAssistant,
		},
		{
			name:  "entry node hands off to its assistant",
			from:  NodeEnterBuildPC,
			state: routeState([]dialog.Skill{dialog.SkillBuildPC}),
			want:  NodeBuildPC,
		},
		{
			name:  "skill assistant without tool calls ends the turn",
			from:  NodeBuildPC,
			state: routeState([]dialog.Skill{dialog.SkillBuildPC}, dialog.NewAssistantMessage("done!")),
			want:  NodeEnd,
		},
		{
			name: "skill assistant runs its tools",
			from: NodeBuildPC,
			state: routeState([]dialog.Skill{dialog.SkillBuildPC}, dialog.NewAssistantMessage("",
				delegateCall("c1", "pc_builder", nil))),
			want: NodeBuildPCTools,
		},
		{
			name: "escalation wins in any call position",
			from: NodeBuildPC,
			state: routeState([]dialog.Skill{dialog.SkillBuildPC}, dialog.NewAssistantMessage("",
				delegateCall("c1", "pc_builder", nil),
				delegateCall("c2", assistants.ToolCompleteOrEscalate, map[string]any{"reason": "done"}))),
			want: NodeLeaveSkill,
		},
		{
			name:  "build tools loop back",
			from:  NodeBuildPCTools,
			state: routeState([]dialog.Skill{dialog.SkillBuildPC}),
			want:  NodeBuildPC,
		},
		{
			name:  "price entry hands off",
			from:  NodeEnterValidatePrice,
			state: routeState([]dialog.Skill{dialog.SkillValidatePrice}),
			want:  NodeValidatePrice,
		},
		{
			name: "price assistant escalates",
			from: NodeValidatePrice,
			state: routeState([]dialog.Skill{dialog.SkillValidatePrice}, dialog.NewAssistantMessage("",
				delegateCall("c1", assistants.ToolCompleteOrEscalate, map[string]any{"reason": "off topic"}))),
			want: NodeLeaveSkill,
		},
		{
			name: "price assistant runs its tools",
			from: NodeValidatePrice,
			state: routeState([]dialog.Skill{dialog.SkillValidatePrice}, dialog.NewAssistantMessage("",
				delegateCall("c1", "component_prices", nil))),
			want: NodePriceValidationTools,
		},
		{
			name:  "price tools loop back",
			from:  NodePriceValidationTools,
			state: routeState([]dialog.Skill{dialog.SkillValidatePrice}),
			want:  NodeValidatePrice,
		},
		{
			name:  "leave skill returns to primary",
			from:  NodeLeaveSkill,
			state: routeState(nil),
			want:  NodePrimaryAssistant,
		},
		{
			name:  "unknown node terminates",
			from:  NodeID("bogus"),
			state: routeState(nil),
			want:  NodeEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.from, tt.state))
		})
	}
}

func TestRoutingTableIsTotal(t *testing.T) {
	known := make(map[NodeID]bool, len(nodeOrder))
	for _, id := range nodeOrder {
		known[id] = true
	}

	for _, id := range nodeOrder {
		rules, ok := routes[id]
		if !ok || len(rules) == 0 {
			t.Fatalf("node %s has no routing rules", id)
		}
		last := rules[len(rules)-1]
		if last.when != nil {
			t.Errorf("node %s: last rule %q is conditional, routing is not total", id, last.label)
		}
		for _, r := range rules {
			if r.to != NodeEnd && !known[r.to] {
				t.Errorf("node %s routes to unknown node %s", id, r.to)
			}
		}
	}

	if len(routes) != len(nodeOrder) {
		t.Errorf("routing table has %d nodes, roster has %d", len(routes), len(nodeOrder))
	}
}

func TestTransitions_StableOrder(t *testing.T) {
	edges := Transitions()

	var want int
	for _, rules := range routes {
		want += len(rules)
	}
	assert.Len(t, edges, want)

	assert.Equal(t, NodeFetchUserInfo, edges[0].From)
	assert.Equal(t, Transitions(), edges)
}
