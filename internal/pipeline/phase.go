package pipeline

import "fmt"

// Phase names of the built-in phases.
const (
	PhaseBuild       = "build"
	PhaseSqrtBench   = "sqrt-bench"
	PhaseRasterBench = "raster-bench"
	PhaseBench       = "bench"
)

// WaitStage is the stage name that stands for the synchronization marker.
const WaitStage = "wait"

// Phase is a step template. Emitting a phase produces one step per agent.
type Phase struct {
	Name    string
	Icon    string // Buildkite emoji shortcode, e.g. ":hammer:"
	Title   string
	Command string
}

// Label returns the step label for agent, e.g. ":hammer: Build (skyrim)".
func (p Phase) Label(agent string) string {
	return fmt.Sprintf("%s %s (%s)", p.Icon, p.Title, agent)
}

// Step returns the step this phase emits for agent.
func (p Phase) Step(agent string) Step {
	return Step{
		Label:   p.Label(agent),
		Command: p.Command,
		Agents:  AgentSelector{User: agent},
	}
}

var builtinPhases = []Phase{
	{
		Name:    PhaseBuild,
		Icon:    ":hammer:",
		Title:   "Build",
		Command: "bazel build -c opt //...",
	},
	{
		Name:    PhaseSqrtBench,
		Icon:    ":hammer:",
		Title:   "Run Square Root Bench",
		Command: "bazel run -c opt //:bench",
	},
	{
		Name:    PhaseRasterBench,
		Icon:    ":hammer:",
		Title:   "Run Rasterizer Bench",
		Command: "bazel run -c opt //graphics/rasterizer:bench",
	},
	{
		Name:    PhaseBench,
		Icon:    ":hammer:",
		Title:   "Run Bench",
		Command: "bazel run -c opt //:bench",
	},
}

// Phases returns the built-in phases in declaration order.
func Phases() []Phase {
	out := make([]Phase, len(builtinPhases))
	copy(out, builtinPhases)
	return out
}

// LookupPhase returns the built-in phase with the given name.
func LookupPhase(name string) (Phase, bool) {
	for _, p := range builtinPhases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// IsValidStage reports whether name is a built-in phase or the wait stage.
func IsValidStage(name string) bool {
	if name == WaitStage {
		return true
	}
	_, ok := LookupPhase(name)
	return ok
}

// DefaultAgents returns the agents the pipeline targets when none are configured.
func DefaultAgents() []string {
	return []string{
		"wpieterse-dt",
		"skyrim",
		"morrowind",
		"valenwood",
		"public-services",
		"spare-01",
		"spare-02",
	}
}
