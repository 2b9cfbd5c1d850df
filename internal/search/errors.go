package search

import (
	"errors"
	"fmt"

	"github.com/dshills/linepat/internal/pattern/regex"
)

// Errors returned by search operations.
var (
	// ErrNoRememberedPattern indicates a repeat with no previous pattern.
	ErrNoRememberedPattern = regex.ErrNoRememberedPattern

	// ErrNoRememberedReplacement indicates a repeated replacement with none saved.
	ErrNoRememberedReplacement = regex.ErrNoRememberedReplacement

	// ErrNotCompiled indicates matching was attempted after a failed compile.
	ErrNotCompiled = regex.ErrNotCompiled

	// ErrLineTooLong indicates a substitution would exceed the line length limit.
	ErrLineTooLong = errors.New("line too long")

	// ErrInvalidRange indicates a start or end position outside the store.
	ErrInvalidRange = errors.New("invalid range")

	// ErrMultiLineRect indicates a multi-line pattern used with Rect.
	ErrMultiLineRect = regex.ErrMultiLineRect

	// ErrNilStore indicates Search was called without a store.
	ErrNilStore = errors.New("nil line store")
)

// stateError returns a coded error for an operation the session cannot
// perform in its current state.
func stateError(code regex.Code) error {
	return &regex.Error{Code: code}
}

// rangeError returns a coded error for a pattern that cannot run over the
// requested range.
func rangeError(code regex.Code, pattern string) error {
	return &regex.Error{Code: code, Pattern: pattern, Offset: -1}
}

// LineError ties a failure to a store position.
type LineError struct {
	Line int
	Col  int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line+1, e.Col, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}
