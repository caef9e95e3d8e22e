package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/registry"
)

const defaultBudget = 1500

// Budget share per component, by build type. Office builds rely on
// integrated graphics and skip the discrete GPU and the case.
var buildShares = map[string]map[Category]float64{
	"gaming": {
		CategoryGPU:         0.40,
		CategoryCPU:         0.30,
		CategoryMemory:      0.10,
		CategoryMotherboard: 0.10,
		CategoryPSU:         0.05,
		CategoryCase:        0.05,
	},
	"office": {
		CategoryCPU:         0.40,
		CategoryMemory:      0.30,
		CategoryMotherboard: 0.20,
		CategoryPSU:         0.10,
	},
}

// Components are picked in dependency order: the CPU fixes the socket, the
// motherboard fixes the memory generation, and the power supply is sized
// from everything before it.
var buildOrder = []Category{
	CategoryGPU,
	CategoryCPU,
	CategoryMotherboard,
	CategoryMemory,
	CategoryCase,
	CategoryPSU,
}

type buildArgs struct {
	UserInput string `json:"user_input"`
}

type buildPick struct {
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`
	Link  string  `json:"link"`
}

type buildResult struct {
	UserInput  string               `json:"user_input"`
	Budget     float64              `json:"budget"`
	BuildType  string               `json:"build_type"`
	Components map[string]buildPick `json:"components"`
	TotalPrice float64              `json:"total_price"`
	Notes      []string             `json:"notes,omitempty"`
}

// pcBuilderTool assembles a complete build from the catalog for a budget
// and use case described in free text.
func pcBuilderTool(c *Catalog) registry.Tool {
	schema := openapi3.NewObjectSchema().
		WithProperty("user_input", withDescription(openapi3.NewStringSchema(),
			"The user's build request, including budget and intended use, e.g. 'a gaming PC for $1500'."))
	schema.Required = []string{"user_input"}

	return registry.Tool{
		Name:        "pc_builder",
		Description: "Compiles a complete PC build from the component catalog. Splits the budget across components, honors parts the user named and checks socket, memory and wattage compatibility.",
		Schema:      schema,
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			in, err := decodeArgs[buildArgs](args)
			if err != nil {
				return nil, err
			}
			return assembleBuild(c, in.UserInput), nil
		},
	}
}

func assembleBuild(c *Catalog, input string) buildResult {
	budget := parseBudget(input)
	buildType := detectBuildType(input)

	b := &builder{c: c, input: input, picks: map[Category]Part{}}
	shares := buildShares[buildType]
	for _, category := range buildOrder {
		share, ok := shares[category]
		if !ok {
			continue
		}
		b.pick(category, budget*share)
	}

	result := buildResult{
		UserInput:  input,
		Budget:     budget,
		BuildType:  buildType,
		Components: make(map[string]buildPick, len(b.picks)),
		Notes:      b.notes,
	}
	for category, p := range b.picks {
		result.Components[string(category)] = buildPick{Name: p.Name, Brand: p.Brand, Price: p.Price, Link: catalogLink(p)}
		result.TotalPrice += p.Price
	}
	if result.TotalPrice > budget {
		result.Notes = append(result.Notes, fmt.Sprintf("The build totals $%.2f, over the $%.2f budget.", result.TotalPrice, budget))
	}
	return result
}

type builder struct {
	c     *Catalog
	input string
	picks map[Category]Part
	notes []string
}

func (b *builder) pick(category Category, share float64) {
	if p, ok := preferredPart(b.c, category, b.input); ok {
		b.take(category, p, share)
		return
	}

	var candidates []Part
	for _, p := range b.c.Parts(category) {
		if b.compatible(category, p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return
	}

	if p, ok := bestWithin(category, candidates, share); ok {
		b.take(category, p, share)
		return
	}
	// Nothing fits the share; fall back to the cheapest compatible part.
	cheapest := candidates[0]
	for _, p := range candidates[1:] {
		if p.Price < cheapest.Price {
			cheapest = p
		}
	}
	b.take(category, cheapest, share)
}

func (b *builder) take(category Category, p Part, share float64) {
	b.picks[category] = p
	if p.Price > share {
		b.notes = append(b.notes, fmt.Sprintf("The %s exceeds the %s share of the budget ($%.2f).", p.Name, category, share))
	}
}

// compatible enforces the constraints earlier picks impose on this one.
func (b *builder) compatible(category Category, p Part) bool {
	switch category {
	case CategoryMotherboard:
		cpu, ok := b.picks[CategoryCPU]
		return !ok || cpu.Socket == "" || p.Socket == cpu.Socket
	case CategoryMemory:
		mb, ok := b.picks[CategoryMotherboard]
		return !ok || mb.Memory == "" || p.Memory == mb.Memory
	case CategoryPSU:
		return p.Watts >= b.powerNeed()
	default:
		return true
	}
}

func (b *builder) powerNeed() int {
	need := 150
	for _, category := range []Category{CategoryCPU, CategoryGPU} {
		if p, ok := b.picks[category]; ok {
			need += p.Watts
		}
	}
	if need < 500 {
		return 500
	}
	return need
}

// bestWithin picks the strongest candidate that fits the share. Scored
// categories go by score, the case by lowest price, the rest by highest
// price as a quality proxy.
func bestWithin(category Category, candidates []Part, share float64) (Part, bool) {
	var best Part
	found := false
	for _, p := range candidates {
		if p.Price > share {
			continue
		}
		if !found {
			best, found = p, true
			continue
		}
		switch category {
		case CategoryCase, CategoryPSU:
			if p.Price < best.Price {
				best = p
			}
		default:
			if p.Score > best.Score || (p.Score == best.Score && p.Price < best.Price) {
				best = p
			}
		}
	}
	return best, found
}

// preferredPart detects a part the user named outright, so the build keeps
// it even when it blows the per-component share.
func preferredPart(c *Catalog, category Category, input string) (Part, bool) {
	inputTokens := tokenize(input)
	var best Part
	bestScore := 0
	for _, p := range c.Parts(category) {
		s := matchScore(p.Name, input)
		if s <= bestScore {
			continue
		}
		if !sharesExactToken(tokenize(p.Name), inputTokens) {
			continue
		}
		best, bestScore = p, s
	}
	return best, bestScore >= 4
}

func sharesExactToken(a, b []string) bool {
	for _, t := range a {
		if len(t) < 3 {
			continue
		}
		for _, u := range b {
			if t == u {
				return true
			}
		}
	}
	return false
}

var gamingKeywords = []string{"gaming", "game", "games", "stream", "4k", "1440p", "render", "video editing"}

func detectBuildType(input string) string {
	lower := strings.ToLower(input)
	for _, kw := range gamingKeywords {
		if strings.Contains(lower, kw) {
			return "gaming"
		}
	}
	return "office"
}

// Tokens that put the following number inside a product name rather than a
// budget, and units that disqualify the number before them.
var (
	modelPrefixes = map[string]bool{"rtx": true, "gtx": true, "rx": true, "gt": true, "ryzen": true, "core": true, "ddr": true, "ddr4": true, "ddr5": true}
	unitSuffixes  = map[string]bool{"gb": true, "tb": true, "ghz": true, "cores": true, "fps": true, "hz": true, "w": true, "watts": true}
	moneySuffixes = map[string]bool{"dollars": true, "usd": true, "bucks": true}
)

// parseBudget pulls the budget out of free text. Dollar signs and a k
// multiplier win outright; otherwise the first plausible standalone number
// is taken. Small values are read as thousands.
func parseBudget(input string) float64 {
	fields := strings.Fields(strings.ToLower(input))
	first := 0.0
	for i, f := range fields {
		token := strings.Trim(f, "$,.?!()")
		if token == "4k" {
			continue
		}
		mult := 1.0
		if trimmed := strings.TrimSuffix(token, "k"); trimmed != token {
			token, mult = trimmed, 1000
		}
		token = strings.ReplaceAll(token, ",", "")
		v, err := strconv.ParseFloat(token, 64)
		if err != nil || v <= 0 {
			continue
		}
		if i > 0 && modelPrefixes[strings.Trim(fields[i-1], "$,.?!()")] {
			continue
		}
		next := ""
		if i+1 < len(fields) {
			next = strings.Trim(fields[i+1], ",.?!()")
		}
		if unitSuffixes[next] {
			continue
		}
		v *= mult
		if v < 100 {
			v *= 1000
		}
		if v > 50000 {
			continue
		}
		if strings.HasPrefix(f, "$") || mult == 1000 || moneySuffixes[next] {
			return v
		}
		if first == 0 {
			first = v
		}
	}
	if first == 0 {
		return defaultBudget
	}
	return first
}
