package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBottleneck(t *testing.T, args map[string]any) bottleneckResponse {
	t.Helper()
	out, err := PriceRegistry(NewCatalog()).Execute(context.Background(), "calculate_bottleneck", args)
	require.NoError(t, err)
	resp, ok := out.(bottleneckResponse)
	require.True(t, ok)
	return resp
}

func TestBottleneck_GPULimited(t *testing.T) {
	resp := runBottleneck(t, map[string]any{"cpu": "i9 14900k", "gpu": "rtx 4060"})

	assert.Equal(t, "Intel Core i9-14900K", resp.InputParameters.BestProcessorMatch)
	assert.Equal(t, "GeForce RTX 4060", resp.InputParameters.BestGPUMatch)
	assert.Equal(t, "1080p", resp.InputParameters.Resolution)

	assert.Equal(t, "100.0%", resp.Results.GPUPerformance)
	assert.Equal(t, "61.9%", resp.Results.CPUPerformance)
	assert.Equal(t, "38.1%", resp.Results.BottleneckPercentage)
	assert.Contains(t, resp.Results.PerformanceScenarios.Gaming, "Severe GPU bottleneck")

	require.NotEmpty(t, resp.Results.Recommendations)
	assert.Contains(t, resp.Results.Recommendations[0], "GeForce RTX 4060 is limiting your Intel Core i9-14900K")
	assert.Contains(t, resp.Results.Recommendations[1], "GeForce RTX 4090")
}

func TestBottleneck_CPULimited(t *testing.T) {
	resp := runBottleneck(t, map[string]any{"cpu": "ryzen 5 5600", "gpu": "rtx 4090"})

	assert.Equal(t, "100.0%", resp.Results.CPUPerformance)
	assert.Contains(t, resp.Results.Recommendations[0], "AMD Ryzen 5 5600 is limiting")
	assert.Contains(t, resp.Results.Recommendations, "Raising the resolution shifts load to the GPU and reduces a CPU bottleneck.")
}

func TestBottleneck_ResolutionShiftsLoad(t *testing.T) {
	at1080 := runBottleneck(t, map[string]any{"cpu": "ryzen 5 5600", "gpu": "rtx 4090"})
	at4k := runBottleneck(t, map[string]any{"cpu": "ryzen 5 5600", "gpu": "rtx 4090", "resolution": "4k"})

	// 58 vs an effective 100/1.8=55.6 turns the CPU bottleneck into a
	// slight GPU one at 4K.
	assert.Contains(t, at1080.Results.Recommendations[0], "AMD Ryzen 5 5600 is limiting")
	assert.Contains(t, at4k.Results.Recommendations[0], "GeForce RTX 4090 is limiting")
	assert.Equal(t, "4k", at4k.InputParameters.Resolution)
}

func TestBottleneck_Balanced(t *testing.T) {
	resp := runBottleneck(t, map[string]any{"cpu": "7800x3d", "gpu": "rtx 4080 super"})

	assert.Equal(t, "4.3%", resp.Results.BottleneckPercentage)
	assert.Contains(t, resp.Results.PerformanceScenarios.Gaming, "Well balanced")
	require.Len(t, resp.Results.Recommendations, 1)
	assert.Contains(t, resp.Results.Recommendations[0], "well matched")
}

func TestBottleneck_UnknownParts(t *testing.T) {
	reg := PriceRegistry(NewCatalog())

	_, err := reg.Execute(context.Background(), "calculate_bottleneck", map[string]any{
		"cpu": "quantum 9000", "gpu": "rtx 4070",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no catalog match for cpu "quantum 9000"`)

	_, err = reg.Execute(context.Background(), "calculate_bottleneck", map[string]any{"cpu": "ryzen 5 7600"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments for calculate_bottleneck")
}
