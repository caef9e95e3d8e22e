package tools

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/registry"
)

type bottleneckArgs struct {
	CPU        string `json:"cpu"`
	GPU        string `json:"gpu"`
	Resolution string `json:"resolution"`
}

type bottleneckInputParameters struct {
	CPU                string `json:"cpu"`
	GPU                string `json:"gpu"`
	Resolution         string `json:"resolution"`
	BestProcessorMatch string `json:"best_processor_match"`
	BestGPUMatch       string `json:"best_gpu_match"`
}

type performanceScenarios struct {
	Gaming          string `json:"gaming"`
	ContentCreation string `json:"content_creation"`
	Streaming       string `json:"streaming"`
}

type bottleneckResults struct {
	CPUPerformance       string               `json:"cpu_performance"`
	GPUPerformance       string               `json:"gpu_performance"`
	BottleneckPercentage string               `json:"bottleneck_percentage"`
	PerformanceScenarios performanceScenarios `json:"performance_scenarios"`
	Recommendations      []string             `json:"recommendations"`
}

type bottleneckResponse struct {
	InputParameters bottleneckInputParameters `json:"input_parameters"`
	Results         bottleneckResults         `json:"results"`
}

// resolutionFactor scales GPU load: at higher resolutions the GPU carries
// proportionally more of the frame, so its effective headroom shrinks.
func resolutionFactor(resolution string) float64 {
	switch resolution {
	case "1440p", "2k", "2K":
		return 1.35
	case "4k", "4K", "2160p":
		return 1.8
	default:
		return 1.0
	}
}

// bottleneckTool estimates how much a CPU/GPU pairing is held back by its
// slower half at a given resolution.
func bottleneckTool(c *Catalog) registry.Tool {
	schema := openapi3.NewObjectSchema().
		WithProperty("cpu", withDescription(openapi3.NewStringSchema(), "Processor model, e.g. Ryzen 7 7800X3D.")).
		WithProperty("gpu", withDescription(openapi3.NewStringSchema(), "Graphics card model, e.g. GeForce RTX 4070.")).
		WithProperty("resolution", withDescription(openapi3.NewStringSchema(), "Target resolution: 1080p, 1440p or 4k. Defaults to 1080p."))
	schema.Required = []string{"cpu", "gpu"}

	return registry.Tool{
		Name:        "calculate_bottleneck",
		Description: "Calculates the bottleneck percentage between a processor and a graphics card at the chosen resolution, with per-scenario impact and upgrade recommendations.",
		Schema:      schema,
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			in, err := decodeArgs[bottleneckArgs](args)
			if err != nil {
				return nil, err
			}
			if in.Resolution == "" {
				in.Resolution = "1080p"
			}
			cpu, ok := c.BestMatch(CategoryCPU, in.CPU)
			if !ok {
				return nil, fmt.Errorf("no catalog match for cpu %q", in.CPU)
			}
			gpu, ok := c.BestMatch(CategoryGPU, in.GPU)
			if !ok {
				return nil, fmt.Errorf("no catalog match for gpu %q", in.GPU)
			}
			return computeBottleneck(c, in, cpu, gpu), nil
		},
	}
}

func computeBottleneck(c *Catalog, in bottleneckArgs, cpu, gpu Part) bottleneckResponse {
	factor := resolutionFactor(in.Resolution)
	cpuScore := float64(cpu.Score)
	effGPU := float64(gpu.Score) / factor

	pct := func(v float64) string { return fmt.Sprintf("%.1f%%", v) }

	var results bottleneckResults
	bottleneck := imbalance(cpuScore, effGPU)
	if cpuScore < effGPU {
		results.CPUPerformance = pct(100)
		results.GPUPerformance = pct(100 - bottleneck)
	} else {
		results.CPUPerformance = pct(100 - bottleneck)
		results.GPUPerformance = pct(100)
	}
	results.BottleneckPercentage = pct(bottleneck)

	// Content creation and streaming lean harder on the CPU than gaming
	// does, which moves the balance point per scenario.
	results.PerformanceScenarios = performanceScenarios{
		Gaming:          scenarioImpact(cpuScore, effGPU),
		ContentCreation: scenarioImpact(cpuScore*0.8, effGPU),
		Streaming:       scenarioImpact(cpuScore*0.9, effGPU),
	}
	results.Recommendations = recommendations(c, in.Resolution, cpu, gpu, cpuScore, effGPU, bottleneck)

	return bottleneckResponse{
		InputParameters: bottleneckInputParameters{
			CPU:                in.CPU,
			GPU:                in.GPU,
			Resolution:         in.Resolution,
			BestProcessorMatch: cpu.Name,
			BestGPUMatch:       gpu.Name,
		},
		Results: results,
	}
}

// imbalance is how far the slower side trails the faster one, in percent.
func imbalance(a, b float64) float64 {
	hi, lo := a, b
	if b > a {
		hi, lo = b, a
	}
	if hi == 0 {
		return 0
	}
	return (1 - lo/hi) * 100
}

func scenarioImpact(cpuScore, gpuScore float64) string {
	b := imbalance(cpuScore, gpuScore)
	limiter := "GPU"
	if cpuScore < gpuScore {
		limiter = "CPU"
	}
	switch {
	case b < 5:
		return fmt.Sprintf("Well balanced (%.1f%%)", b)
	case b < 10:
		return fmt.Sprintf("Minor %s bottleneck (%.1f%%)", limiter, b)
	case b < 20:
		return fmt.Sprintf("Moderate %s bottleneck (%.1f%%)", limiter, b)
	default:
		return fmt.Sprintf("Severe %s bottleneck (%.1f%%)", limiter, b)
	}
}

func recommendations(c *Catalog, resolution string, cpu, gpu Part, cpuScore, effGPU, bottleneck float64) []string {
	if bottleneck < 5 {
		return []string{fmt.Sprintf("The %s and %s are well matched at %s; no upgrade needed.", cpu.Name, gpu.Name, resolution)}
	}
	var recs []string
	if cpuScore < effGPU {
		recs = append(recs, fmt.Sprintf("Your %s is limiting your %s at %s.", cpu.Name, gpu.Name, resolution))
		if up, ok := fasterPart(c, CategoryCPU, int(effGPU)); ok {
			recs = append(recs, fmt.Sprintf("Consider a faster processor such as the %s.", up.Name))
		}
		if resolutionFactor(resolution) < 1.8 {
			recs = append(recs, "Raising the resolution shifts load to the GPU and reduces a CPU bottleneck.")
		}
	} else {
		recs = append(recs, fmt.Sprintf("Your %s is limiting your %s at %s.", gpu.Name, cpu.Name, resolution))
		if up, ok := fasterPart(c, CategoryGPU, int(cpuScore*resolutionFactor(resolution))); ok {
			recs = append(recs, fmt.Sprintf("Consider a faster graphics card such as the %s.", up.Name))
		}
		if resolutionFactor(resolution) > 1.0 {
			recs = append(recs, "Lowering the resolution shifts load back to the CPU and reduces a GPU bottleneck.")
		}
	}
	return recs
}

// fasterPart returns the cheapest catalog part of a category scoring at
// least the target.
func fasterPart(c *Catalog, category Category, target int) (Part, bool) {
	var best Part
	found := false
	for _, p := range c.Parts(category) {
		if p.Score < target {
			continue
		}
		if !found || p.Price < best.Price {
			best, found = p, true
		}
	}
	return best, found
}
