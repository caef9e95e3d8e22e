package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentPrices(t *testing.T) {
	reg := PriceRegistry(NewCatalog())

	out, err := reg.Execute(context.Background(), "component_prices", map[string]any{
		"components": []any{
			map[string]any{"cpu": "ryzen 5 7600"},
			map[string]any{"gpu": "rtx 4070"},
			map[string]any{"name": "corsair vengeance ddr5"},
		},
	})
	require.NoError(t, err)
	results, ok := out.(map[string][]priceOffer)
	require.True(t, ok)
	require.Len(t, results, 3)

	offers := results["ryzen 5 7600"]
	require.Len(t, offers, 3)
	assert.Equal(t, "lowest price first", offers[0].SortType)
	assert.Equal(t, "highest price first", offers[1].SortType)
	assert.Equal(t, "best match", offers[2].SortType)
	assert.LessOrEqual(t, offers[0].Price, offers[1].Price)
	assert.Equal(t, "AMD Ryzen 5 7600", offers[2].Name)
	assert.Equal(t, 229.0, offers[2].Price)
	assert.Equal(t, "catalog://cpu/amd-ryzen-5-7600", offers[2].Link)

	assert.Equal(t, "GeForce RTX 4070", results["rtx 4070"][2].Name)
	assert.Equal(t, "Corsair Vengeance 32 GB DDR5-6000", results["corsair vengeance ddr5"][2].Name)
}

func TestComponentPrices_NoListings(t *testing.T) {
	reg := PriceRegistry(NewCatalog())

	out, err := reg.Execute(context.Background(), "component_prices", map[string]any{
		"components": []any{map[string]any{"name": "flux capacitor"}},
	})
	require.NoError(t, err)
	results := out.(map[string][]priceOffer)
	assert.Empty(t, results["flux capacitor"])
}

func TestComponentPrices_SkipsBlankEntries(t *testing.T) {
	reg := PriceRegistry(NewCatalog())

	out, err := reg.Execute(context.Background(), "component_prices", map[string]any{
		"components": []any{map[string]any{}, map[string]any{"gpu": "rx 7600"}},
	})
	require.NoError(t, err)
	results := out.(map[string][]priceOffer)
	require.Len(t, results, 1)
	assert.Equal(t, "Radeon RX 7600", results["rx 7600"][2].Name)
}

func TestComponentPrices_RequiresComponents(t *testing.T) {
	reg := PriceRegistry(NewCatalog())

	_, err := reg.Execute(context.Background(), "component_prices", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments for component_prices")
}
