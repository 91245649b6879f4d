package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wpieterse/pipegen/internal/errors"
	"github.com/wpieterse/pipegen/internal/logging"
)

const (
	rootMarker = "steps:"
	waitMarker = "  - wait"
)

// Emitter turns a profile and an agent list into manifest text.
// The zero value is not usable; create one with NewEmitter.
type Emitter struct {
	logger *logging.Logger
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used for per-phase debug records.
func WithLogger(l *logging.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEmitter creates an Emitter. Without options it logs nothing.
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lines returns the manifest as a lazy sequence of lines without trailing
// newlines. Inputs are validated before the sequence is returned, so ranging
// over it never fails. The sequence can be ranged over any number of times.
func (e *Emitter) Lines(p Profile, agents []string) (iter.Seq[string], error) {
	if err := validate(p, agents); err != nil {
		return nil, err
	}

	seq := e.lines(p, agents)
	return func(yield func(string) bool) {
		for _, line := range seq {
			if !yield(line) {
				return
			}
		}
	}, nil
}

// Emit writes the manifest to w. Output is buffered and flushed at every
// phase boundary, so a failed write names the phase it belonged to.
func (e *Emitter) Emit(w io.Writer, p Profile, agents []string) error {
	if err := validate(p, agents); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	current := ""
	for phase, line := range e.lines(p, agents) {
		if phase != current {
			if err := bw.Flush(); err != nil {
				return writeError(p, current, err)
			}
			current = phase
		}
		if _, err := bw.WriteString(line); err != nil {
			return writeError(p, phase, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return writeError(p, phase, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return writeError(p, current, err)
	}

	e.logger.Info("manifest emitted",
		"profile", p.Name,
		"agents", len(agents),
		"steps", stepCount(p, agents),
	)
	return nil
}

// lines yields each manifest line keyed by the stage it belongs to. The root
// marker has an empty stage name.
func (e *Emitter) lines(p Profile, agents []string) iter.Seq2[string, string] {
	log := e.logger.WithProfile(p.Name)
	return func(yield func(string, string) bool) {
		if !yield("", rootMarker) {
			return
		}
		for _, stage := range p.Stages {
			if stage.Wait {
				if !yield(WaitStage, waitMarker) {
					return
				}
				continue
			}
			for _, agent := range agents {
				for _, line := range stepLines(stage.Phase.Step(agent)) {
					if !yield(stage.Phase.Name, line) {
						return
					}
				}
			}
			log.WithPhase(stage.Phase.Name).Debug("phase emitted", "steps", len(agents))
		}
	}
}

// Render returns the manifest as a string.
func (e *Emitter) Render(p Profile, agents []string) (string, error) {
	var sb strings.Builder
	if err := e.Emit(&sb, p, agents); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var nopEmitter = NewEmitter()

// Lines is Emitter.Lines on an emitter that does not log.
func Lines(p Profile, agents []string) (iter.Seq[string], error) {
	return nopEmitter.Lines(p, agents)
}

// Emit is Emitter.Emit on an emitter that does not log.
func Emit(w io.Writer, p Profile, agents []string) error {
	return nopEmitter.Emit(w, p, agents)
}

// Render is Emitter.Render on an emitter that does not log.
func Render(p Profile, agents []string) (string, error) {
	return nopEmitter.Render(p, agents)
}

func validate(p Profile, agents []string) error {
	if len(p.Stages) == 0 {
		return errors.NewEmitError("profile has no stages", errors.ErrInvalidInput).
			WithProfile(p.Name).
			WithSeverity(errors.SeverityWarning)
	}
	if len(agents) == 0 {
		return errors.NewEmitError("nothing to emit", errors.ErrNoAgents).
			WithProfile(p.Name).
			WithSeverity(errors.SeverityWarning)
	}
	for i, agent := range agents {
		field := fmt.Sprintf("agents[%d]", i)
		switch {
		case agent == "":
			cause := errors.NewValidationError("agent name cannot be empty").
				WithField(field).
				WithValue(agent).
				WithCause(errors.ErrEmptyAgent)
			return errors.NewEmitError("invalid agent list", cause).
				WithProfile(p.Name).
				WithSeverity(errors.SeverityWarning)
		case !utf8.ValidString(agent):
			// YAML reads \xHH as a code point, not a byte, so raw bytes cannot round-trip
			cause := errors.NewValidationError("agent name is not valid UTF-8").WithField(field)
			return errors.NewEmitError("invalid agent list", cause).
				WithProfile(p.Name).
				WithAgent(agent).
				WithSeverity(errors.SeverityWarning)
		}
	}
	return nil
}

func writeError(p Profile, phase string, err error) error {
	return errors.NewEmitError("cannot write manifest", errors.Join(errors.ErrWriteFailed, err)).
		WithProfile(p.Name).
		WithPhase(phase)
}

// stepLines renders one step block. Values are YAML double-quoted scalars.
// For valid UTF-8, Go's quoting escapes are a subset of YAML's, so plain names
// come out as "name".
func stepLines(s Step) [4]string {
	return [4]string{
		"  - label: " + strconv.Quote(s.Label),
		"    command: " + strconv.Quote(s.Command),
		"    agents:",
		"      user: " + strconv.Quote(s.Agent()),
	}
}

func stepCount(p Profile, agents []string) int {
	n := 0
	for _, s := range p.Stages {
		if !s.Wait {
			n += len(agents)
		}
	}
	return n
}
