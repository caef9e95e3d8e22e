package tools

import (
	"context"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/registry"
)

type priceComponent struct {
	CPU  string `json:"cpu"`
	GPU  string `json:"gpu"`
	Name string `json:"name"`
}

type priceArgs struct {
	Components []priceComponent `json:"components"`
}

// priceOffer is one catalog listing for a queried component. The sort type
// tells the model which view of the listings the entry came from.
type priceOffer struct {
	SortType string  `json:"sort_type"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Link     string  `json:"link"`
}

// componentPricesTool looks up catalog prices for a list of components.
// The result maps each search query to up to three listings: the cheapest
// candidate, the priciest and the closest name match.
func componentPricesTool(c *Catalog) registry.Tool {
	item := openapi3.NewObjectSchema().
		WithProperty("cpu", withDescription(openapi3.NewStringSchema(), "Processor model, e.g. Intel Core i5-14600K.")).
		WithProperty("gpu", withDescription(openapi3.NewStringSchema(), "Graphics card model, e.g. GeForce RTX 4070.")).
		WithProperty("name", withDescription(openapi3.NewStringSchema(), "Name of any other component: memory, motherboard, power supply, case or storage."))
	item.Description = "One component to price. Set exactly one of cpu, gpu or name."

	schema := openapi3.NewObjectSchema().
		WithProperty("components", openapi3.NewArraySchema().WithItems(item))
	schema.Required = []string{"components"}

	return registry.Tool{
		Name:        "component_prices",
		Description: "Fetches current catalog prices for PC components. Accepts a list of components and returns the listings found for each.",
		Schema:      schema,
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			in, err := decodeArgs[priceArgs](args)
			if err != nil {
				return nil, err
			}
			results := make(map[string][]priceOffer, len(in.Components))
			for _, comp := range in.Components {
				query, category := comp.query()
				if query == "" {
					continue
				}
				results[query] = listOffers(c, category, query)
			}
			return results, nil
		},
	}
}

func (pc priceComponent) query() (string, Category) {
	switch {
	case pc.CPU != "":
		return pc.CPU, CategoryCPU
	case pc.GPU != "":
		return pc.GPU, CategoryGPU
	default:
		return pc.Name, ""
	}
}

func listOffers(c *Catalog, category Category, query string) []priceOffer {
	type scored struct {
		part  Part
		score int
	}
	var candidates []scored
	for _, p := range c.Parts(category) {
		if s := matchScore(query, p.Name); s > 0 {
			candidates = append(candidates, scored{p, s})
		}
	}
	if len(candidates) == 0 {
		return []priceOffer{}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}

	cheapest, priciest, best := candidates[0], candidates[0], candidates[0]
	for _, cand := range candidates[1:] {
		if cand.part.Price < cheapest.part.Price {
			cheapest = cand
		}
		if cand.part.Price > priciest.part.Price {
			priciest = cand
		}
	}
	offer := func(sortType string, p Part) priceOffer {
		return priceOffer{SortType: sortType, Name: p.Name, Price: p.Price, Link: catalogLink(p)}
	}
	return []priceOffer{
		offer("lowest price first", cheapest.part),
		offer("highest price first", priciest.part),
		offer("best match", best.part),
	}
}
