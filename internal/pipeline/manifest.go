package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wpieterse/pipegen/internal/errors"
)

// AgentSelector pins a step to a build agent.
type AgentSelector struct {
	User string `yaml:"user"`
}

// Step is one command pinned to one agent.
type Step struct {
	Label   string        `yaml:"label"`
	Command string        `yaml:"command"`
	Agents  AgentSelector `yaml:"agents"`
}

// Agent returns the agent the step runs on.
func (s Step) Agent() string {
	return s.Agents.User
}

// Entry is one item under steps: either a Step or the wait marker.
type Entry struct {
	Wait bool
	Step Step
}

// UnmarshalYAML decodes "- wait" scalars and step mappings.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != WaitStage {
			return fmt.Errorf("line %d: unexpected scalar %q: %w", node.Line, node.Value, errors.ErrMalformedManifest)
		}
		e.Wait = true
		return nil
	case yaml.MappingNode:
		var s Step
		if err := node.Decode(&s); err != nil {
			return err
		}
		e.Step = s
		return nil
	default:
		return fmt.Errorf("line %d: step must be a mapping or %q: %w", node.Line, WaitStage, errors.ErrMalformedManifest)
	}
}

// MarshalYAML encodes the wait marker as a plain scalar.
func (e Entry) MarshalYAML() (any, error) {
	if e.Wait {
		return WaitStage, nil
	}
	return e.Step, nil
}

// Manifest is a parsed pipeline manifest.
type Manifest struct {
	Steps []Entry `yaml:"steps"`
}

// Parse decodes manifest text.
func Parse(data []byte) (*Manifest, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader decodes manifest text from r. An empty document or one without a
// steps list is malformed.
func ParseReader(r io.Reader) (*Manifest, error) {
	var raw struct {
		Steps *[]Entry `yaml:"steps"`
	}

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, errors.NewManifestError("document is empty", errors.ErrMalformedManifest)
		}
		if errors.Is(err, errors.ErrMalformedManifest) {
			return nil, errors.NewManifestError("invalid entry", err)
		}
		return nil, errors.NewManifestError("invalid yaml: "+err.Error(), errors.ErrMalformedManifest)
	}
	if raw.Steps == nil {
		return nil, errors.NewManifestError("missing steps list", errors.ErrMalformedManifest)
	}

	return &Manifest{Steps: *raw.Steps}, nil
}

// Validate checks that every step has a label, a command and an agent.
func (m *Manifest) Validate() error {
	if m.StepCount() == 0 {
		return errors.NewManifestError("manifest has no steps", errors.ErrEmptyField)
	}
	for i, e := range m.Steps {
		if e.Wait {
			continue
		}
		switch {
		case e.Step.Label == "":
			return errors.NewManifestError("step has no label", errors.ErrEmptyField).WithIndex(i)
		case e.Step.Command == "":
			return errors.NewManifestError("step has no command", errors.ErrEmptyField).WithIndex(i)
		case e.Step.Agent() == "":
			return errors.NewManifestError("step has no agent", errors.ErrEmptyField).WithIndex(i)
		}
	}
	return nil
}

// StepCount returns the number of steps, not counting wait markers.
func (m *Manifest) StepCount() int {
	n := 0
	for _, e := range m.Steps {
		if !e.Wait {
			n++
		}
	}
	return n
}

// Agents returns the agent of every step in manifest order.
func (m *Manifest) Agents() []string {
	agents := make([]string, 0, len(m.Steps))
	for _, e := range m.Steps {
		if !e.Wait {
			agents = append(agents, e.Step.Agent())
		}
	}
	return agents
}

// Phases splits the steps at wait markers. Empty groups are dropped.
func (m *Manifest) Phases() [][]Step {
	var phases [][]Step
	var current []Step
	for _, e := range m.Steps {
		if e.Wait {
			if len(current) > 0 {
				phases = append(phases, current)
			}
			current = nil
			continue
		}
		current = append(current, e.Step)
	}
	if len(current) > 0 {
		phases = append(phases, current)
	}
	return phases
}
