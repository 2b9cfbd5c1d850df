package regex

import (
	"errors"
	"fmt"
)

// Errors returned by pattern compilation.
var (
	// ErrUnterminatedBracket indicates a '[' without a closing ']'.
	ErrUnterminatedBracket = errors.New("unterminated bracket expression")

	// ErrUnbalancedParen indicates a '(' or ')' without its partner.
	ErrUnbalancedParen = errors.New("unbalanced parentheses")

	// ErrTooManyGroups indicates more than nine capture groups.
	ErrTooManyGroups = errors.New("too many groups")

	// ErrBadBackref indicates a back-reference to an open or missing group.
	ErrBadBackref = errors.New("bad back-reference")

	// ErrBadRepetition indicates a malformed {m,n} bound.
	ErrBadRepetition = errors.New("malformed repetition bound")

	// ErrBadRange indicates a bracket range whose end precedes its start.
	ErrBadRange = errors.New("invalid bracket range")

	// ErrTrailingEscape indicates a pattern ending in a bare escape.
	ErrTrailingEscape = errors.New("trailing escape")

	// ErrStarredBoundary indicates a repeated line-boundary token or a
	// repeated bracket class that can match the line boundary.
	ErrStarredBoundary = errors.New("repeated line boundary is not supported")

	// ErrProgramTooLarge indicates the compiled program exceeds its size limit.
	ErrProgramTooLarge = errors.New("pattern too complex")

	// ErrPatternTooLong indicates translated pattern text exceeds its limit.
	ErrPatternTooLong = errors.New("pattern too long")

	// ErrMultiLineRect indicates a pattern spanning lines used with a
	// rectangular column range.
	ErrMultiLineRect = errors.New("multi-line pattern in a rectangular range")
)

// Errors returned when a session lacks the state an operation needs.
var (
	// ErrNoRememberedPattern indicates a repeat with no previous pattern.
	ErrNoRememberedPattern = errors.New("no remembered pattern")

	// ErrNoRememberedReplacement indicates a repeated replacement with none saved.
	ErrNoRememberedReplacement = errors.New("no remembered replacement")

	// ErrNotCompiled indicates matching was attempted after a failed compile.
	ErrNotCompiled = errors.New("pattern not compiled")
)

// Code is the machine-readable identifier of a pattern error.
type Code int

// Error codes.
const (
	CodeUnterminatedBracket Code = iota + 1
	CodeUnbalancedParen
	CodeTooManyGroups
	CodeBadBackref
	CodeBadRepetition
	CodeBadRange
	CodeTrailingEscape
	CodeStarredBoundary
	CodeProgramTooLarge
	CodePatternTooLong
	CodeNoRememberedPattern
	CodeNoRememberedReplacement
	CodeNotCompiled
	CodeMultiLineRect
)

var codeErrors = map[Code]error{
	CodeUnterminatedBracket: ErrUnterminatedBracket,
	CodeUnbalancedParen:     ErrUnbalancedParen,
	CodeTooManyGroups:       ErrTooManyGroups,
	CodeBadBackref:          ErrBadBackref,
	CodeBadRepetition:       ErrBadRepetition,
	CodeBadRange:            ErrBadRange,
	CodeTrailingEscape:      ErrTrailingEscape,
	CodeStarredBoundary:     ErrStarredBoundary,
	CodeProgramTooLarge:     ErrProgramTooLarge,
	CodePatternTooLong:      ErrPatternTooLong,

	CodeNoRememberedPattern:     ErrNoRememberedPattern,
	CodeNoRememberedReplacement: ErrNoRememberedReplacement,
	CodeNotCompiled:             ErrNotCompiled,
	CodeMultiLineRect:           ErrMultiLineRect,
}

// Err returns the sentinel error for the code.
func (c Code) Err() error {
	if err, ok := codeErrors[c]; ok {
		return err
	}
	return fmt.Errorf("pattern error %d", int(c))
}

// String returns the diagnostic text for the code.
func (c Code) String() string {
	return c.Err().Error()
}

// Class groups error codes by how the caller should react.
type Class int

const (
	// ClassSyntax is a malformed pattern; nothing was matched.
	ClassSyntax Class = iota
	// ClassCapacity is a fixed limit being exceeded.
	ClassCapacity
	// ClassState is an operation that needs state the session lacks.
	ClassState
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassSyntax:
		return "syntax"
	case ClassCapacity:
		return "capacity"
	case ClassState:
		return "state"
	default:
		return "unknown"
	}
}

// Class reports the class of the code.
func (c Code) Class() Class {
	switch c {
	case CodeProgramTooLarge, CodePatternTooLong:
		return ClassCapacity
	case CodeNoRememberedPattern, CodeNoRememberedReplacement, CodeNotCompiled:
		return ClassState
	default:
		return ClassSyntax
	}
}

// Error describes a compile failure and where in the pattern it happened.
// State errors carry only a Code.
type Error struct {
	// Code identifies the failure.
	Code Code
	// Pattern is the pattern text being processed.
	Pattern string
	// Offset is the byte offset in Pattern where the failure was detected,
	// or -1 when the failure is not tied to one.
	Offset int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code.Class() == ClassState {
		return e.Code.String()
	}
	if e.Offset < 0 {
		return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Code)
	}
	return fmt.Sprintf("pattern %q: %s at offset %d", e.Pattern, e.Code, e.Offset)
}

// Unwrap returns the sentinel error for the code.
func (e *Error) Unwrap() error {
	return e.Code.Err()
}

// CodeOf extracts the error code from err, or 0 if err is not a pattern error.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return 0
}
