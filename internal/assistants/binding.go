package assistants

import (
	"strings"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
	"github.com/rigmate/rigmate/pkg/registry"
)

// Binding is one assistant's complete configuration: the prompt, the tool
// surface advertised to the model and the executable registry behind it.
// Delegate and escalate signals appear in Tools but not in Registry; they
// are consumed by the router, never executed.
type Binding struct {
	Name     string
	Skill    dialog.Skill
	System   string
	Tools    []ports.ToolSpec
	Registry *registry.Registry
}

// RenderSystem substitutes the user info placeholder in the system prompt.
func (b Binding) RenderSystem(userInfo string) string {
	if userInfo == "" {
		userInfo = "nothing yet"
	}
	return strings.ReplaceAll(b.System, "{user_info}", userInfo)
}

// Set is the full assistant roster for one graph.
type Set struct {
	Primary       Binding
	BuildPC       Binding
	ValidatePrice Binding
}

// NewSet assembles the roster. buildTools and priceTools hold the
// executable catalog tools for the two specialized assistants; the primary
// assistant has no executable tools of its own.
func NewSet(buildTools, priceTools *registry.Registry) Set {
	if buildTools == nil {
		buildTools = registry.New()
	}
	if priceTools == nil {
		priceTools = registry.New()
	}
	return Set{
		Primary: Binding{
			Name:     "primary assistant",
			System:   primaryPrompt,
			Tools:    []ports.ToolSpec{ToPCBuildSpec(), ToPriceValidationSpec()},
			Registry: registry.New(),
		},
		BuildPC: Binding{
			Name:     "PC build assistant",
			Skill:    dialog.SkillBuildPC,
			System:   pcBuildPrompt,
			Tools:    append(buildTools.Specs(), CompleteOrEscalateSpec()),
			Registry: buildTools,
		},
		ValidatePrice: Binding{
			Name:     "price validation assistant",
			Skill:    dialog.SkillValidatePrice,
			System:   priceValidationPrompt,
			Tools:    append(priceTools.Specs(), CompleteOrEscalateSpec()),
			Registry: priceTools,
		},
	}
}
