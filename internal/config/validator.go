package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/wpieterse/pipegen/internal/errors"
	"github.com/wpieterse/pipegen/internal/logging"
	"github.com/wpieterse/pipegen/internal/pipeline"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "profiles.nightly.stages[1]")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Is reports whether target is errors.ErrInvalidInput, so config problems
// match the same sentinel as other input validation failures.
func (e ValidationErrors) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// Unwrap returns nil; ValidationErrors has no single cause.
func (e ValidationErrors) Unwrap() error {
	return nil
}

// Severity reports config problems as warnings: the user can fix and retry.
func (e ValidationErrors) Severity() errors.Severity {
	return errors.SeverityWarning
}

// IsUserFacing returns true; every message names a config field.
func (e ValidationErrors) IsUserFacing() bool {
	return true
}

// logLevels returns the accepted logging.level values in lower case.
func logLevels() []string {
	levels := logging.ValidLevels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = strings.ToLower(l)
	}
	return out
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateAgents()...)
	errs = append(errs, c.validateProfiles()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateAgents() []ValidationError {
	var errs []ValidationError

	if len(c.Agents) == 0 {
		errs = append(errs, ValidationError{
			Field:   "agents",
			Value:   c.Agents,
			Message: "must list at least one agent",
		})
	}
	for i, agent := range c.Agents {
		if agent == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("agents[%d]", i),
				Value:   agent,
				Message: "agent name cannot be empty",
			})
		}
	}

	return errs
}

// validateProfiles checks the selected profile exists and every defined
// profile only names known stages
func (c *Config) validateProfiles() []ValidationError {
	var errs []ValidationError

	// Sorted so the error order is stable across runs
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := c.Profiles[name]
		if len(p.Stages) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("profiles.%s.stages", name),
				Value:   p.Stages,
				Message: "must list at least one stage",
			})
		}
		for i, stage := range p.Stages {
			if !pipeline.IsValidStage(stage) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("profiles.%s.stages[%d]", name, i),
					Value:   stage,
					Message: fmt.Sprintf("must be one of: %s", strings.Join(validStages(), ", ")),
				})
			}
		}
	}

	if c.Profile == "" {
		errs = append(errs, ValidationError{
			Field:   "profile",
			Value:   c.Profile,
			Message: "cannot be empty",
		})
	} else if _, defined := c.Profiles[c.Profile]; !defined && !slices.Contains(pipeline.ProfileNames(), c.Profile) {
		known := append(pipeline.ProfileNames(), names...)
		sort.Strings(known)
		errs = append(errs, ValidationError{
			Field:   "profile",
			Value:   c.Profile,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(slices.Compact(known), ", ")),
		})
	}

	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(logging.ValidLevels(), strings.ToUpper(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logLevels(), ", ")),
		})
	}

	return errs
}

func validStages() []string {
	stages := []string{pipeline.WaitStage}
	for _, p := range pipeline.Phases() {
		stages = append(stages, p.Name)
	}
	return stages
}
