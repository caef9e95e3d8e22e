package tools

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/mapstructure"

	"github.com/rigmate/rigmate/pkg/registry"
)

// withDescription sets Description on a schema; kin-openapi's Schema has
// no chainable setter for it.
func withDescription(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}

// BuildRegistry returns the tool set of the PC build assistant.
func BuildRegistry(c *Catalog) *registry.Registry {
	r := registry.New()
	r.Register(pcBuilderTool(c))
	r.Register(questionAnswerTool(c))
	return r
}

// PriceRegistry returns the tool set of the price validation assistant.
func PriceRegistry(c *Catalog) *registry.Registry {
	r := registry.New()
	r.Register(componentPricesTool(c))
	r.Register(bottleneckTool(c))
	r.Register(gameRequirementsTool(c))
	return r
}

// decodeArgs maps loosely typed tool arguments onto a struct keyed by json
// tags. Numbers arrive as float64 from the model, so weak typing is on.
func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return out, fmt.Errorf("decode arguments: %w", err)
	}
	return out, nil
}

// catalogLink renders the pseudo-URL a part is addressed by in tool output.
func catalogLink(p Part) string {
	slug := strings.ToLower(p.Name)
	for _, r := range []string{" ", ".", "!", "/"} {
		slug = strings.ReplaceAll(slug, r, "-")
	}
	slug = strings.ReplaceAll(slug, "--", "-")
	return fmt.Sprintf("catalog://%s/%s", p.Category, strings.Trim(slug, "-"))
}
