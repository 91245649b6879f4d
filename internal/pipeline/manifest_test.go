package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	pgerrors "github.com/wpieterse/pipegen/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSteps int
		wantWaits int
		wantErr   error
	}{
		{
			name: "single step",
			input: `steps:
  - label: "Build"
    command: "make"
    agents:
      user: "skyrim"
`,
			wantSteps: 1,
		},
		{
			name: "steps around a wait",
			input: `steps:
  - label: a
    command: x
    agents: {user: one}
  - wait
  - label: b
    command: y
    agents: {user: two}
`,
			wantSteps: 2,
			wantWaits: 1,
		},
		{
			name:      "empty steps list",
			input:     "steps: []\n",
			wantSteps: 0,
		},
		{
			name:    "empty document",
			input:   "",
			wantErr: pgerrors.ErrMalformedManifest,
		},
		{
			name:    "missing steps key",
			input:   "env:\n  FOO: bar\n",
			wantErr: pgerrors.ErrMalformedManifest,
		},
		{
			name:    "unknown scalar entry",
			input:   "steps:\n  - block\n",
			wantErr: pgerrors.ErrMalformedManifest,
		},
		{
			name:    "nested sequence entry",
			input:   "steps:\n  - [a, b]\n",
			wantErr: pgerrors.ErrMalformedManifest,
		},
		{
			name:    "not yaml",
			input:   "steps: [\n",
			wantErr: pgerrors.ErrMalformedManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, &pgerrors.ManifestError{})
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSteps, m.StepCount())

			waits := 0
			for _, e := range m.Steps {
				if e.Wait {
					waits++
				}
			}
			assert.Equal(t, tt.wantWaits, waits)
		})
	}
}

func TestManifest_Validate(t *testing.T) {
	step := func(label, command, agent string) Entry {
		return Entry{Step: Step{Label: label, Command: command, Agents: AgentSelector{User: agent}}}
	}

	tests := []struct {
		name      string
		manifest  Manifest
		wantIndex int
		wantMsg   string
	}{
		{
			name:      "no steps",
			manifest:  Manifest{Steps: []Entry{{Wait: true}}},
			wantIndex: -1,
			wantMsg:   "manifest has no steps",
		},
		{
			name:      "missing label",
			manifest:  Manifest{Steps: []Entry{step("a", "b", "c"), {Wait: true}, step("", "b", "c")}},
			wantIndex: 2,
			wantMsg:   "no label",
		},
		{
			name:      "missing command",
			manifest:  Manifest{Steps: []Entry{step("a", "", "c")}},
			wantIndex: 0,
			wantMsg:   "no command",
		},
		{
			name:      "missing agent",
			manifest:  Manifest{Steps: []Entry{step("a", "b", "c"), step("a", "b", "")}},
			wantIndex: 1,
			wantMsg:   "no agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, pgerrors.ErrEmptyField)

			var me *pgerrors.ManifestError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.wantIndex, me.Index)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	valid := Manifest{Steps: []Entry{step("a", "b", "c"), {Wait: true}, step("d", "e", "f")}}
	assert.NoError(t, valid.Validate())
}

func TestManifest_Phases(t *testing.T) {
	m := Manifest{Steps: []Entry{
		{Wait: true},
		{Step: Step{Label: "1", Agents: AgentSelector{User: "a"}}},
		{Step: Step{Label: "2", Agents: AgentSelector{User: "b"}}},
		{Wait: true},
		{Wait: true},
		{Step: Step{Label: "3", Agents: AgentSelector{User: "c"}}},
	}}

	phases := m.Phases()
	require.Len(t, phases, 2)
	assert.Len(t, phases[0], 2)
	assert.Len(t, phases[1], 1)
	assert.Equal(t, []string{"a", "b", "c"}, m.Agents())
}

func TestEntry_MarshalYAML(t *testing.T) {
	m := Manifest{Steps: []Entry{
		{Step: Step{Label: "Build (skyrim)", Command: "make", Agents: AgentSelector{User: "skyrim"}}},
		{Wait: true},
	}}

	out, err := yaml.Marshal(&m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- wait")

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, m.Steps, back.Steps)
}

func TestParseReader(t *testing.T) {
	out, err := Render(mustLookup(t, ProfileDefault), DefaultAgents())
	require.NoError(t, err)

	m, err := ParseReader(strings.NewReader(out))
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 3*len(DefaultAgents()), m.StepCount())
	assert.Len(t, m.Steps, 3*len(DefaultAgents())+1)
}
