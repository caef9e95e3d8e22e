package assistants

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/ports"
)

// Control-flow tool names. The router keys transitions off these, so they
// are part of the graph contract rather than ordinary catalog tools.
const (
	ToolToPCBuild          = "ToPCBuildAssistant"
	ToolToPriceValidation  = "ToPriceValidationCheckerAssistant"
	ToolCompleteOrEscalate = "CompleteOrEscalate"
)

// ToPCBuildSpec describes the delegate signal that hands the dialog to the
// PC build assistant. It is never executed; the router consumes it.
func ToPCBuildSpec() ports.ToolSpec {
	schema := openapi3.NewObjectSchema().
		WithProperty("user_input", withDescription(openapi3.NewStringSchema(),
			"The user's request, restated with any context the specialist needs."))
	schema.Required = []string{"user_input"}
	return ports.ToolSpec{
		Name:        ToolToPCBuild,
		Description: "Transfers work to the specialized assistant that compiles PC builds from the component catalog.",
		Schema:      schema,
	}
}

// ToPriceValidationSpec describes the delegate signal that hands the dialog
// to the price validation assistant.
func ToPriceValidationSpec() ports.ToolSpec {
	schema := openapi3.NewObjectSchema().
		WithProperty("input_data", withDescription(openapi3.NewStringSchema(),
			"The components, prices or games the user wants checked."))
	schema.Required = []string{"input_data"}
	return ports.ToolSpec{
		Name:        ToolToPriceValidation,
		Description: "Transfers work to the specialized assistant that validates component prices, estimates bottlenecks and checks game requirements.",
		Schema:      schema,
	}
}

// CompleteOrEscalateSpec describes the signal a specialized assistant emits
// to mark its task complete or to escalate back to the primary assistant.
func CompleteOrEscalateSpec() ports.ToolSpec {
	schema := openapi3.NewObjectSchema().
		WithProperty("cancel", openapi3.NewBoolSchema().WithDefault(true)).
		WithProperty("reason", withDescription(openapi3.NewStringSchema(),
			"Why control is being handed back."))
	schema.Required = []string{"reason"}
	schema.Example = map[string]any{
		"cancel": true,
		"reason": "The user changed their mind about the current task.",
	}
	return ports.ToolSpec{
		Name:        ToolCompleteOrEscalate,
		Description: "Marks the current task as complete and/or hands control of the dialog back to the primary assistant, who can re-route it based on the user's needs.",
		Schema:      schema,
	}
}

// withDescription sets Description on a schema; kin-openapi's Schema has
// no chainable setter for it.
func withDescription(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}
