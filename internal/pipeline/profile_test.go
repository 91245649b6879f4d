package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgerrors "github.com/wpieterse/pipegen/internal/errors"
)

func TestBuiltinProfiles(t *testing.T) {
	tests := []struct {
		name   string
		stages []string
	}{
		{ProfileDefault, []string{PhaseBuild, WaitStage, PhaseSqrtBench, PhaseRasterBench}},
		{ProfileCompact, []string{PhaseBuild, PhaseBench}},
		{ProfileBuild, []string{PhaseBuild}},
		{ProfileBench, []string{PhaseBench}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LookupProfile(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.stages, p.StageNames())
			assert.NotEmpty(t, p.Description)
		})
	}

	assert.Equal(t, []string{"bench", "build", "compact", "default"}, ProfileNames())
}

func TestLookupProfile_Unknown(t *testing.T) {
	_, err := LookupProfile("nightly")
	require.Error(t, err)
	assert.ErrorIs(t, err, pgerrors.ErrUnknownProfile)
	assert.ErrorIs(t, err, &pgerrors.NotFoundError{})
	assert.Equal(t, "profile 'nightly' not found: unknown profile", err.Error())
}

func TestNewProfile(t *testing.T) {
	t.Run("resolves phases and waits", func(t *testing.T) {
		p, err := NewProfile("nightly", "", []string{PhaseBuild, WaitStage, PhaseRasterBench})
		require.NoError(t, err)
		require.Len(t, p.Stages, 3)
		assert.True(t, p.Stages[1].Wait)
		assert.Equal(t, "bazel run -c opt //graphics/rasterizer:bench", p.Stages[2].Phase.Command)
		assert.Equal(t, "nightly: build -> wait -> raster-bench", p.String())
	})

	t.Run("unknown phase", func(t *testing.T) {
		_, err := NewProfile("nightly", "", []string{PhaseBuild, "lint"})
		require.Error(t, err)
		assert.ErrorIs(t, err, pgerrors.ErrUnknownPhase)
		assert.Contains(t, err.Error(), "phase 'lint' not found")
	})

	t.Run("no stages", func(t *testing.T) {
		_, err := NewProfile("nightly", "", nil)
		assert.ErrorIs(t, err, pgerrors.ErrInvalidInput)
	})

	t.Run("no name", func(t *testing.T) {
		_, err := NewProfile("", "", []string{PhaseBuild})
		assert.ErrorIs(t, err, pgerrors.ErrInvalidInput)
	})
}

func TestRegistry_Define(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Define("nightly", "rasterizer only", []string{PhaseRasterBench}))
	p, err := r.Lookup("nightly")
	require.NoError(t, err)
	assert.Equal(t, "rasterizer only", p.Description)
	assert.Contains(t, r.Names(), "nightly")

	// Overriding a built-in only affects this registry.
	require.NoError(t, r.Define(ProfileBuild, "", []string{PhaseBench}))
	p, err = r.Lookup(ProfileBuild)
	require.NoError(t, err)
	assert.Equal(t, []string{PhaseBench}, p.StageNames())

	builtin, err := LookupProfile(ProfileBuild)
	require.NoError(t, err)
	assert.Equal(t, []string{PhaseBuild}, builtin.StageNames())

	assert.Error(t, r.Define("broken", "", []string{"nope"}))
	_, err = r.Lookup("broken")
	assert.Error(t, err)

	profiles := r.Profiles()
	require.Len(t, profiles, 5)
	assert.Equal(t, "bench", profiles[0].Name)
}

func TestPhases(t *testing.T) {
	phases := Phases()
	require.Len(t, phases, 4)

	phases[0].Command = "mutated"
	p, ok := LookupPhase(PhaseBuild)
	require.True(t, ok)
	assert.Equal(t, "bazel build -c opt //...", p.Command)

	assert.True(t, IsValidStage(WaitStage))
	assert.True(t, IsValidStage(PhaseSqrtBench))
	assert.False(t, IsValidStage("deploy"))

	assert.Equal(t, ":hammer: Run Bench (spare-01)", mustPhase(t, PhaseBench).Label("spare-01"))
}

func TestDefaultAgents(t *testing.T) {
	agents := DefaultAgents()
	assert.Equal(t, []string{
		"wpieterse-dt", "skyrim", "morrowind", "valenwood",
		"public-services", "spare-01", "spare-02",
	}, agents)

	agents[0] = "changed"
	assert.Equal(t, "wpieterse-dt", DefaultAgents()[0])
}

func mustPhase(t *testing.T, name string) Phase {
	t.Helper()
	p, ok := LookupPhase(name)
	require.True(t, ok)
	return p
}
