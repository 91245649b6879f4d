// Package errors provides centralized error definitions and error handling utilities
// for pipegen. It defines domain-specific errors, semantic error types, error
// constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - EmitError: errors raised while emitting a pipeline manifest
//   - ManifestError: errors raised while parsing or validating a manifest
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found (profile, phase)
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewEmitError("agent list is empty", errors.ErrNoAgents).WithProfile("default")
//
//	if errors.Is(err, errors.ErrNoAgents) { ... }
//
//	var manifestErr *errors.ManifestError
//	if errors.As(err, &manifestErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Severity says who has to act on an error.
type Severity int

const (
	// SeverityWarning marks input or configuration mistakes the user can fix
	// and retry.
	SeverityWarning Severity = iota + 1
	// SeverityError marks failures outside the user's input, such as an
	// unwritable output file.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "none"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Emission sentinel errors
var (
	// ErrNoAgents indicates that emission was requested for an empty agent list.
	ErrNoAgents = New("no agents given")
	// ErrEmptyAgent indicates that an agent identifier is the empty string.
	ErrEmptyAgent = New("agent name is empty")
	// ErrUnknownProfile indicates that a pipeline profile does not exist.
	ErrUnknownProfile = New("unknown profile")
	// ErrUnknownPhase indicates that a profile names a phase that does not exist.
	ErrUnknownPhase = New("unknown phase")
	// ErrWriteFailed indicates that the manifest could not be written out.
	ErrWriteFailed = New("write failed")
)

// Manifest sentinel errors
var (
	// ErrMalformedManifest indicates that manifest text does not have the step schema.
	ErrMalformedManifest = New("malformed manifest")
	// ErrEmptyField indicates that a step is missing its label, command or agent.
	ErrEmptyField = New("empty step field")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PipegenError is the base interface for all pipegen errors.
type PipegenError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// EmitError represents errors raised while emitting a manifest.
//
// Example:
//
//	err := errors.NewEmitError("cannot emit step", errors.ErrEmptyAgent).
//	    WithProfile("default").WithPhase("build").WithAgent("")
//	fmt.Println(err) // "emit error [profile=default, phase=build]: cannot emit step: agent name is empty"
type EmitError struct {
	baseError
	Profile string
	Phase   string
	Agent   string
}

// NewEmitError creates a new EmitError.
func NewEmitError(message string, cause error) *EmitError {
	return &EmitError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithProfile adds the profile name to the error context.
func (e *EmitError) WithProfile(name string) *EmitError {
	e.Profile = name
	return e
}

// WithPhase adds the phase name to the error context.
func (e *EmitError) WithPhase(name string) *EmitError {
	e.Phase = name
	return e
}

// WithAgent adds the agent name to the error context.
func (e *EmitError) WithAgent(agent string) *EmitError {
	e.Agent = agent
	return e
}

// WithSeverity sets the error severity.
func (e *EmitError) WithSeverity(s Severity) *EmitError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *EmitError) Error() string {
	var parts []string
	if e.Profile != "" {
		parts = append(parts, fmt.Sprintf("profile=%s", e.Profile))
	}
	if e.Phase != "" {
		parts = append(parts, fmt.Sprintf("phase=%s", e.Phase))
	}
	if e.Agent != "" {
		parts = append(parts, fmt.Sprintf("agent=%q", e.Agent))
	}

	prefix := "emit error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("emit error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *EmitError) Is(target error) bool {
	if _, ok := target.(*EmitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ManifestError represents errors raised while parsing or validating a manifest.
// Index is the zero-based entry position under steps, or -1 when the error is
// not tied to one entry.
//
// Example:
//
//	err := errors.NewManifestError("step has no command", errors.ErrEmptyField).
//	    WithSource("pipeline.yml").WithIndex(3)
//	fmt.Println(err) // "manifest error [source=pipeline.yml, entry=3]: step has no command: empty step field"
type ManifestError struct {
	baseError
	Source string
	Index  int
}

// NewManifestError creates a new ManifestError.
func NewManifestError(message string, cause error) *ManifestError {
	return &ManifestError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Index: -1,
	}
}

// WithSource adds the manifest source (file name or "stdin") to the error context.
func (e *ManifestError) WithSource(source string) *ManifestError {
	e.Source = source
	return e
}

// WithIndex adds the entry index to the error context.
func (e *ManifestError) WithIndex(idx int) *ManifestError {
	e.Index = idx
	return e
}

// Error returns the formatted error message.
func (e *ManifestError) Error() string {
	var parts []string
	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("source=%s", e.Source))
	}
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("entry=%d", e.Index))
	}

	prefix := "manifest error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("manifest error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ManifestError) Is(target error) bool {
	if _, ok := target.(*ManifestError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("profile", "nightly")
//	fmt.Println(err) // "profile 'nightly' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("agent name cannot be empty")
//	err = err.WithField("agents[2]").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%q", fmt.Sprint(e.Value)))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
// Errors implementing PipegenError report for themselves; anything else
// (I/O failures, yaml decoder internals) is treated as internal.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var pipegenErr PipegenError
	if As(err, &pipegenErr) {
		return pipegenErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PipegenError, and the
// zero Severity for nil.
func GetSeverity(err error) Severity {
	if err == nil {
		return 0
	}

	var pipegenErr PipegenError
	if As(err, &pipegenErr) {
		return pipegenErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this returns nil for a nil error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
