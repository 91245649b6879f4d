// Package pipeline emits and parses Buildkite-style pipeline manifests.
//
// # Emission
//
// A [Profile] is an ordered list of stages. Each stage is either a [Phase],
// which expands to one step per agent, or the wait marker. [Lines] yields the
// manifest lazily, and [Emit] writes it to an io.Writer:
//
//	p, _ := pipeline.LookupProfile("default")
//	_ = pipeline.Emit(os.Stdout, p, pipeline.DefaultAgents())
//
// Output for a single agent and the "build" profile:
//
//	steps:
//	  - label: ":hammer: Build (skyrim)"
//	    command: "bazel build -c opt //..."
//	    agents:
//	      user: "skyrim"
//
// Emission is a single sequential pass. The same profile and agents always
// produce byte-identical output.
//
// # Parsing
//
// [Parse] reads emitted text back into a [Manifest] so the output can be
// checked: step count, agent order, and non-empty fields.
package pipeline
