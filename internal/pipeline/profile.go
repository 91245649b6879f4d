package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wpieterse/pipegen/internal/errors"
)

// Profile names of the built-in profiles.
const (
	ProfileDefault = "default"
	ProfileCompact = "compact"
	ProfileBuild   = "build"
	ProfileBench   = "bench"
)

// Stage is one entry of a profile: either a phase or the wait marker.
type Stage struct {
	Wait  bool
	Phase Phase
}

// Name returns the phase name, or "wait" for the wait stage.
func (s Stage) Name() string {
	if s.Wait {
		return WaitStage
	}
	return s.Phase.Name
}

// Profile is a named pipeline variant.
type Profile struct {
	Name        string
	Description string
	Stages      []Stage
}

// StageNames returns the stage names in order.
func (p Profile) StageNames() []string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.Name()
	}
	return names
}

// String renders the profile as "name: stage -> stage".
func (p Profile) String() string {
	return fmt.Sprintf("%s: %s", p.Name, strings.Join(p.StageNames(), " -> "))
}

// NewProfile resolves stage names into a Profile. Each name must be a
// built-in phase or "wait".
func NewProfile(name, description string, stages []string) (Profile, error) {
	if name == "" {
		return Profile{}, errors.NewValidationError("profile name cannot be empty").WithField("name")
	}
	if len(stages) == 0 {
		return Profile{}, errors.NewValidationError("profile has no stages").WithField("stages").WithValue(name)
	}

	p := Profile{Name: name, Description: description, Stages: make([]Stage, 0, len(stages))}
	for i, stage := range stages {
		if stage == WaitStage {
			p.Stages = append(p.Stages, Stage{Wait: true})
			continue
		}
		phase, ok := LookupPhase(stage)
		if !ok {
			return Profile{}, errors.NewNotFoundError("phase", stage).
				WithCause(errors.Wrapf(errors.ErrUnknownPhase, "profile %s stage %d", name, i))
		}
		p.Stages = append(p.Stages, Stage{Phase: phase})
	}
	return p, nil
}

func mustProfile(name, description string, stages ...string) Profile {
	p, err := NewProfile(name, description, stages)
	if err != nil {
		panic(err)
	}
	return p
}

// Registry holds the profiles that can be emitted by name.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry returns a Registry preloaded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range builtinProfiles() {
		r.profiles[p.Name] = p
	}
	return r
}

// Define adds or replaces a profile built from stage names.
func (r *Registry) Define(name, description string, stages []string) error {
	p, err := NewProfile(name, description, stages)
	if err != nil {
		return err
	}
	r.profiles[name] = p
	return nil
}

// Lookup returns the named profile.
func (r *Registry) Lookup(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, errors.NewNotFoundError("profile", name).WithCause(errors.ErrUnknownProfile)
	}
	return p, nil
}

// Names returns the profile names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profiles returns all profiles sorted by name.
func (r *Registry) Profiles() []Profile {
	names := r.Names()
	out := make([]Profile, len(names))
	for i, name := range names {
		out[i] = r.profiles[name]
	}
	return out
}

var defaultRegistry = NewRegistry()

// LookupProfile returns a built-in profile by name.
func LookupProfile(name string) (Profile, error) {
	return defaultRegistry.Lookup(name)
}

// ProfileNames returns the built-in profile names sorted alphabetically.
func ProfileNames() []string {
	return defaultRegistry.Names()
}

func builtinProfiles() []Profile {
	return []Profile{
		mustProfile(ProfileDefault, "build on every agent, then run both benchmarks",
			PhaseBuild, WaitStage, PhaseSqrtBench, PhaseRasterBench),
		mustProfile(ProfileCompact, "build and bench on every agent without a wait",
			PhaseBuild, PhaseBench),
		mustProfile(ProfileBuild, "build only",
			PhaseBuild),
		mustProfile(ProfileBench, "square root benchmark only",
			PhaseBench),
	}
}
