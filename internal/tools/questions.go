package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/registry"
)

var categoryKeywords = []struct {
	category Category
	words    []string
	plural   string
}{
	{CategoryCPU, []string{"cpu", "processor"}, "processors"},
	{CategoryGPU, []string{"gpu", "graphics", "video card"}, "graphics cards"},
	{CategoryMemory, []string{"ram", "memory"}, "memory kits"},
	{CategoryMotherboard, []string{"motherboard", "mainboard"}, "motherboards"},
	{CategoryPSU, []string{"psu", "power supply", "power supplies"}, "power supplies"},
	{CategoryCase, []string{"case", "chassis", "tower"}, "cases"},
	{CategoryStorage, []string{"ssd", "nvme", "storage", "drive"}, "drives"},
}

// questionAnswerTool answers free-form questions about the catalog:
// prices of named parts, the cheapest or best entries of a category, or
// what a category holds.
func questionAnswerTool(c *Catalog) registry.Tool {
	schema := openapi3.NewObjectSchema().
		WithProperty("user_input", withDescription(openapi3.NewStringSchema(),
			"The user's question about components, e.g. 'how much is the RTX 4070?'."))
	schema.Required = []string{"user_input"}

	return registry.Tool{
		Name:        "question_answer",
		Description: "Answers questions about the component catalog: prices, the cheapest or fastest parts of a category, and what is available.",
		Schema:      schema,
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			in, err := decodeArgs[buildArgs](args)
			if err != nil {
				return nil, err
			}
			return answerQuestion(c, in.UserInput), nil
		},
	}
}

func answerQuestion(c *Catalog, question string) string {
	lower := strings.ToLower(question)

	category, plural, hasCategory := detectCategory(lower)

	switch {
	case hasCategory && containsAny(lower, "cheapest", "cheap", "affordable", "budget"):
		return rankedAnswer(c, category, plural, "The most affordable", byPriceAsc)
	case hasCategory && containsAny(lower, "best", "fastest", "top", "most powerful"):
		return rankedAnswer(c, category, plural, "The strongest", byScoreDesc)
	}

	if p, ok := namedPart(c, question); ok {
		return describePart(p)
	}

	if hasCategory {
		parts := c.Parts(category)
		lo, hi := priceRange(parts)
		return fmt.Sprintf("The catalog lists %d %s, from $%.2f to $%.2f.", len(parts), plural, lo, hi)
	}
	return "I can answer questions about the processors, graphics cards, memory, motherboards, power supplies, cases and drives in the catalog. Name a part or a category."
}

func detectCategory(lower string) (Category, string, bool) {
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(lower, w) {
				return ck.category, ck.plural, true
			}
		}
	}
	return "", "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func byPriceAsc(a, b Part) bool  { return a.Price < b.Price }
func byScoreDesc(a, b Part) bool { return a.Score > b.Score }

func rankedAnswer(c *Catalog, category Category, plural, lead string, less func(a, b Part) bool) string {
	parts := c.Parts(category)
	if len(parts) == 0 {
		return fmt.Sprintf("The catalog has no %s.", plural)
	}
	sort.SliceStable(parts, func(i, j int) bool { return less(parts[i], parts[j]) })
	if len(parts) > 3 {
		parts = parts[:3]
	}
	entries := make([]string, len(parts))
	for i, p := range parts {
		entries[i] = fmt.Sprintf("%s ($%.2f)", p.Name, p.Price)
	}
	return fmt.Sprintf("%s %s in the catalog: %s.", lead, plural, strings.Join(entries, ", "))
}

// namedPart resolves a part the question names outright. The exact-token
// requirement keeps generic questions from matching a random entry.
func namedPart(c *Catalog, question string) (Part, bool) {
	questionTokens := tokenize(question)
	var best Part
	bestScore := 0
	for _, p := range c.Parts("") {
		s := matchScore(p.Name, question)
		if s <= bestScore {
			continue
		}
		if !sharesExactToken(tokenize(p.Name), questionTokens) {
			continue
		}
		best, bestScore = p, s
	}
	return best, bestScore >= 4
}

func describePart(p Part) string {
	var extra string
	switch {
	case p.Socket != "" && p.Category == CategoryCPU:
		extra = fmt.Sprintf(" It uses the %s socket.", p.Socket)
	case p.Socket != "" && p.Category == CategoryMotherboard:
		extra = fmt.Sprintf(" It takes %s processors and %s memory.", p.Socket, p.Memory)
	case p.Category == CategoryPSU:
		extra = fmt.Sprintf(" It delivers %d W.", p.Watts)
	case p.Category == CategoryGPU:
		extra = fmt.Sprintf(" It draws around %d W.", p.Watts)
	}
	return fmt.Sprintf("The %s is listed at $%.2f.%s", p.Name, p.Price, extra)
}

func priceRange(parts []Part) (lo, hi float64) {
	for i, p := range parts {
		if i == 0 || p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}
	return lo, hi
}
