// Package diagnostics defines the error taxonomy of the lowering
// pipeline.
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/funvibe/caselower/internal/ast"
)

// ErrorCode identifies a class of diagnostic.
type ErrorCode string

const (
	// ErrL001 RecoveryFailure: an ordinal maps to no constructor of its
	// descriptor. Fatal.
	ErrL001 ErrorCode = "L001"
	// ErrL002 UnsupportedPattern: an arm value has an unrecognised shape
	// and was lowered to a wildcard.
	ErrL002 ErrorCode = "L002"
	// ErrL003 AmbiguousBinderRecovery: several binder candidates competed
	// for one payload position.
	ErrL003 ErrorCode = "L003"
	// ErrL004 UnresolvedErasedTest: the scrutinee looks like an ordinal
	// test but no descriptor could be resolved.
	ErrL004 ErrorCode = "L004"

	ErrF001 ErrorCode = "F001" // fixture
	ErrF002 ErrorCode = "F002" // expectation
	ErrC001 ErrorCode = "C001" // configuration
	ErrP001 ErrorCode = "P001" // cache
)

var codeTitles = map[ErrorCode]string{
	ErrL001: "recovery failure",
	ErrL002: "unsupported pattern",
	ErrL003: "ambiguous binder recovery",
	ErrL004: "unresolved erased test",
	ErrF001: "invalid fixture",
	ErrF002: "expectation mismatch",
	ErrC001: "invalid configuration",
	ErrP001: "cache error",
}

// Title is the human-readable class name of the code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return string(c)
}

// Severity orders diagnostics.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// DiagnosticError is a located, coded diagnostic. It implements error so
// fatal diagnostics can be returned directly.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Pos      ast.Pos
	Message  string
	Err      error
}

func (e *DiagnosticError) Error() string {
	loc := ""
	if e.Pos != (ast.Pos{}) {
		loc = e.Pos.String() + ": "
	}
	msg := fmt.Sprintf("%s%s [%s]: %s", loc, e.Severity, e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DiagnosticError) Unwrap() error { return e.Err }

// NewError builds an error-severity diagnostic.
func NewError(code ErrorCode, pos ast.Pos, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Pos: pos, Message: msg}
}

// NewWarning builds a warning diagnostic.
func NewWarning(code ErrorCode, pos ast.Pos, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Pos: pos, Message: msg}
}

// NewInfo builds an informational diagnostic.
func NewInfo(code ErrorCode, pos ast.Pos, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityInfo, Pos: pos, Message: msg}
}

// Wrap attaches an underlying error to an error-severity diagnostic.
func Wrap(code ErrorCode, pos ast.Pos, err error, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Pos: pos, Message: msg, Err: err}
}

// As extracts a DiagnosticError from an error chain, wrapping foreign
// errors under the given code.
func As(err error, fallback ErrorCode) *DiagnosticError {
	if err == nil {
		return nil
	}
	var d *DiagnosticError
	if errors.As(err, &d) {
		return d
	}
	return &DiagnosticError{Code: fallback, Severity: SeverityError, Message: err.Error()}
}

// HasCode reports whether err carries a diagnostic with the given code.
func HasCode(err error, code ErrorCode) bool {
	var d *DiagnosticError
	return errors.As(err, &d) && d.Code == code
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []*DiagnosticError) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
