package tools

import (
	"context"
	"fmt"
	"math"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rigmate/rigmate/pkg/registry"
)

type gameArgs struct {
	GameName string `json:"game_name"`
	CPU      string `json:"cpu"`
	GPU      string `json:"gpu"`
	RAM      int    `json:"ram"`
	Memory   int    `json:"memory"`
}

type fpsInfo struct {
	Resolution string `json:"resolution"`
	FPS        string `json:"fps"`
}

type gameRequirementsResult struct {
	Game         string    `json:"game"`
	CPU          string    `json:"cpu"`
	GPU          string    `json:"gpu"`
	RAM          int       `json:"ram"`
	Requirements string    `json:"requirements,omitempty"`
	FPSInfo      []fpsInfo `json:"fps_info"`
	Paragraphs   []string  `json:"paragraphs"`
	Error        string    `json:"error,omitempty"`
}

// gameProfile holds the demands of one title. Scores sit on the same
// 0-100 index the catalog uses; baseFPS is the 1080p frame rate on the
// recommended hardware.
type gameProfile struct {
	name    string
	minCPU  int
	recCPU  int
	minGPU  int
	recGPU  int
	minRAM  int
	recRAM  int
	baseFPS int
}

func gameProfiles() []gameProfile {
	return []gameProfile{
		{name: "Cyberpunk 2077", minCPU: 58, recCPU: 72, minGPU: 60, recGPU: 83, minRAM: 12, recRAM: 16, baseFPS: 70},
		{name: "Baldur's Gate 3", minCPU: 55, recCPU: 70, minGPU: 58, recGPU: 76, minRAM: 8, recRAM: 16, baseFPS: 85},
		{name: "Counter-Strike 2", minCPU: 40, recCPU: 58, minGPU: 45, recGPU: 60, minRAM: 8, recRAM: 16, baseFPS: 240},
		{name: "Elden Ring", minCPU: 55, recCPU: 70, minGPU: 58, recGPU: 68, minRAM: 12, recRAM: 16, baseFPS: 60},
		{name: "Starfield", minCPU: 60, recCPU: 80, minGPU: 60, recGPU: 83, minRAM: 16, recRAM: 32, baseFPS: 60},
		{name: "Fortnite", minCPU: 40, recCPU: 58, minGPU: 45, recGPU: 60, minRAM: 8, recRAM: 16, baseFPS: 144},
	}
}

func findGame(name string) (gameProfile, bool) {
	var best gameProfile
	bestScore := 0
	for _, g := range gameProfiles() {
		if s := matchScore(name, g.name); s > bestScore {
			best, bestScore = g, s
		}
	}
	return best, bestScore > 0
}

// gameRequirementsTool checks whether a CPU/GPU/RAM combination can run a
// game, with expected frame rates per resolution. Lookup failures land in
// the result's error field so the model can relay them.
func gameRequirementsTool(c *Catalog) registry.Tool {
	schema := openapi3.NewObjectSchema().
		WithProperty("game_name", withDescription(openapi3.NewStringSchema(), "Title of the game, e.g. Cyberpunk 2077.")).
		WithProperty("cpu", withDescription(openapi3.NewStringSchema(), "Processor model.")).
		WithProperty("gpu", withDescription(openapi3.NewStringSchema(), "Graphics card model.")).
		WithProperty("ram", withDescription(openapi3.NewIntegerSchema(), "Installed memory in GB."))
	schema.Required = []string{"game_name", "cpu", "gpu"}

	return registry.Tool{
		Name:        "check_game_requirements",
		Description: "Checks a game's system requirements against the given processor, graphics card and RAM, and estimates the frame rate at 1080p, 1440p and 4K.",
		Schema:      schema,
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			in, err := decodeArgs[gameArgs](args)
			if err != nil {
				return nil, err
			}
			if in.RAM == 0 {
				in.RAM = in.Memory
			}
			if in.RAM == 0 {
				in.RAM = 16
			}
			return checkGameRequirements(c, in), nil
		},
	}
}

func checkGameRequirements(c *Catalog, in gameArgs) gameRequirementsResult {
	result := gameRequirementsResult{
		Game:       in.GameName,
		CPU:        in.CPU,
		GPU:        in.GPU,
		RAM:        in.RAM,
		FPSInfo:    []fpsInfo{},
		Paragraphs: []string{},
	}

	game, ok := findGame(in.GameName)
	if !ok {
		result.Error = fmt.Sprintf("game not found: %q", in.GameName)
		return result
	}
	result.Game = game.name

	cpu, ok := c.BestMatch(CategoryCPU, in.CPU)
	if !ok {
		result.Error = fmt.Sprintf("no catalog match for cpu %q", in.CPU)
		return result
	}
	gpu, ok := c.BestMatch(CategoryGPU, in.GPU)
	if !ok {
		result.Error = fmt.Sprintf("no catalog match for gpu %q", in.GPU)
		return result
	}
	result.GPU = gpu.Name

	result.Requirements = requirementsVerdict(game, cpu, gpu, in.RAM)

	for _, res := range []string{"1080p", "1440p", "4K"} {
		fps := estimateFPS(game, cpu, gpu, res)
		result.FPSInfo = append(result.FPSInfo, fpsInfo{Resolution: res, FPS: fmt.Sprintf("%d", fps)})
	}

	result.Paragraphs = []string{
		fmt.Sprintf("The %s pairs with the %s for %s at roughly %s FPS on high settings at 1080p.",
			gpu.Name, cpu.Name, game.name, result.FPSInfo[0].FPS),
		ramParagraph(game, in.RAM),
	}
	return result
}

func requirementsVerdict(game gameProfile, cpu, gpu Part, ram int) string {
	switch {
	case cpu.Score >= game.recCPU && gpu.Score >= game.recGPU && ram >= game.recRAM:
		return fmt.Sprintf("Your system exceeds the recommended requirements for %s.", game.name)
	case cpu.Score >= game.minCPU && gpu.Score >= game.minGPU && ram >= game.minRAM:
		return fmt.Sprintf("Your system meets the minimum requirements for %s but falls short of the recommended ones.", game.name)
	default:
		return fmt.Sprintf("Your system falls below the minimum requirements for %s.", game.name)
	}
}

// estimateFPS scales the profile's base frame rate by how the given parts
// compare to the recommended ones. The CPU caps the frame rate mostly
// independent of resolution.
func estimateFPS(game gameProfile, cpu, gpu Part, resolution string) int {
	gpuFPS := float64(game.baseFPS) * float64(gpu.Score) / float64(game.recGPU) / resolutionFactor(resolution)
	cpuCap := float64(game.baseFPS) * float64(cpu.Score) / float64(game.recCPU) * 1.1
	return int(math.Round(math.Min(gpuFPS, cpuCap)))
}

func ramParagraph(game gameProfile, ram int) string {
	switch {
	case ram >= game.recRAM:
		return fmt.Sprintf("%d GB of memory meets the %d GB recommended for this title.", ram, game.recRAM)
	case ram >= game.minRAM:
		return fmt.Sprintf("%d GB of memory clears the %d GB minimum, but %d GB is recommended.", ram, game.minRAM, game.recRAM)
	default:
		return fmt.Sprintf("%d GB of memory is below the %d GB minimum for this title.", ram, game.minRAM)
	}
}
