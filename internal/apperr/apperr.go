// Package apperr defines the stage error taxonomy shared by every component
// of the pipeline. Orchestrator, Auditor, and CLI all switch on Kind rather
// than on Go error types, so the taxonomy is closed and explicit.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies which stage failed and why, independent of the Go error
// chain that produced it.
type Kind string

const (
	ExtractionError   Kind = "EXTRACTION_ERROR"
	InvalidPlan       Kind = "INVALID_PLAN"
	ExecutionError    Kind = "EXECUTION_ERROR"
	FailedValidation  Kind = "FAILED_VALIDATION"
	ConfigError       Kind = "CONFIG_ERROR"
	AuditError        Kind = "AUDIT_ERROR"
)

// Error is the typed error carried across stage boundaries. Stage and Path
// are optional context: Stage names the component that raised it, Path is a
// JSON-pointer-style locator for validation-style failures.
type Error struct {
	Kind  Kind
	Stage string
	Path  string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s[%s@%s]: %s", e.Kind, e.Stage, e.Path, e.Msg)
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Stage, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given kind, stage, and formatted message.
func New(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around an existing error, preserving it for Unwrap.
func Wrap(kind Kind, stage string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Stage: stage, Msg: err.Error(), Err: err}
}

// WithPath returns a copy of e with Path set, for validation-pipeline errors
// that need to point at a specific field.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, otherwise
// returns "" and false.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}
