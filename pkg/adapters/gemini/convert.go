package gemini

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"google.golang.org/genai"

	"github.com/rigmate/rigmate/pkg/dialog"
	"github.com/rigmate/rigmate/pkg/ports"
)

// toContents converts the dialog transcript to Gemini Content format.
// Messages that would produce no parts are skipped; Gemini rejects them.
func toContents(messages []dialog.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if content := toContent(msg); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

func toContent(msg dialog.Message) *genai.Content {
	role := "user"
	if msg.Role == dialog.RoleAssistant {
		role = "model"
	}

	var parts []*genai.Part

	if msg.Role == dialog.RoleTool {
		// Tool results travel back as function responses on the user turn.
		name := msg.Name
		if name == "" {
			name = msg.ToolCallID
		}
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				Name: name,
				Response: map[string]any{
					"content": msg.Content,
				},
			},
		})
		return &genai.Content{Role: role, Parts: parts}
	}

	if text := msg.Text(); text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	for _, call := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				Name: call.Name,
				Args: call.Args,
			},
		})
	}

	if len(parts) == 0 {
		return nil
	}
	return &genai.Content{Role: role, Parts: parts}
}

// toTools converts the bound tool surface to Gemini function declarations.
func toTools(specs []ports.ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		decl := &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
		}
		if spec.Schema != nil {
			decl.Parameters = toSchema(spec.Schema)
		}
		decls = append(decls, decl)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toSchema converts an OpenAPI schema to the Gemini schema dialect. Only
// the subset Gemini understands is mapped.
func toSchema(src *openapi3.Schema) *genai.Schema {
	if src == nil {
		return nil
	}
	schema := &genai.Schema{
		Type:        toType(src.Type),
		Description: src.Description,
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(src.Properties))
		for name, ref := range src.Properties {
			if ref != nil {
				schema.Properties[name] = toSchema(ref.Value)
			}
		}
	}
	if src.Items != nil {
		schema.Items = toSchema(src.Items.Value)
	}
	if len(src.Required) > 0 {
		schema.Required = src.Required
	}
	for _, v := range src.Enum {
		schema.Enum = append(schema.Enum, fmt.Sprintf("%v", v))
	}
	return schema
}

func toType(t *openapi3.Types) genai.Type {
	if t == nil || len(*t) == 0 {
		return genai.TypeString
	}
	switch (*t)[0] {
	case openapi3.TypeString:
		return genai.TypeString
	case openapi3.TypeNumber:
		return genai.TypeNumber
	case openapi3.TypeInteger:
		return genai.TypeInteger
	case openapi3.TypeBoolean:
		return genai.TypeBoolean
	case openapi3.TypeArray:
		return genai.TypeArray
	case openapi3.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// defaultSafetySettings disables blocking for all categories; the graph
// layer decides what to do with model output.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

// fromResponse converts a Gemini response to a dialog message. Gemini does
// not assign call IDs, so fresh ones are synthesized; the tools node
// answers whatever IDs the assistant message carries, so any unique value
// works.
func fromResponse(resp *genai.GenerateContentResponse, newCallID func() string) (dialog.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return dialog.Message{}, fmt.Errorf("gemini: response has no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return dialog.Message{Role: dialog.RoleAssistant}, nil
	}

	var text string
	var calls []dialog.ToolCall
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text += part.Text
		}
		if part.FunctionCall != nil {
			calls = append(calls, dialog.ToolCall{
				ID:   newCallID(),
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return dialog.NewAssistantMessage(text, calls...), nil
}
