package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoPattern indicates a run was requested without a pattern or script.
	ErrNoPattern = errors.New("no pattern given")

	// ErrInvalidRange indicates a malformed line or column range option.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInPlaceStdin indicates in-place editing was requested for standard input.
	ErrInPlaceStdin = errors.New("cannot edit standard input in place")
)

// Stage names the step of a run that failed.
type Stage string

// Stages of a run.
const (
	StageConfig Stage = "load config"
	StageScript Stage = "read script"
	StageOpen   Stage = "open"
	StageSearch Stage = "search"
)

// InputError ties a failure to the stage and input it happened on.
type InputError struct {
	Stage Stage
	Input string // file path or display name; empty when not tied to an input
	Err   error
}

// NewInputError creates a new InputError.
func NewInputError(stage Stage, input string, err error) *InputError {
	return &InputError{Stage: stage, Input: input, Err: err}
}

func (e *InputError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Stage)
	if e.Input != "" {
		msg += " " + e.Input
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RunError reports the inputs of a run that failed. Inputs that
// succeeded are not listed.
type RunError struct {
	Inputs int     // inputs attempted
	Failed []error // one entry per failed input, in order
}

func (e *RunError) add(err error) {
	if err != nil {
		e.Failed = append(e.Failed, err)
	}
}

// err returns nil when nothing failed.
func (e *RunError) err() error {
	if len(e.Failed) == 0 {
		return nil
	}
	return e
}

func (e *RunError) Error() string {
	switch len(e.Failed) {
	case 0:
		return ""
	case 1:
		return e.Failed[0].Error()
	}
	return fmt.Sprintf("%d of %d inputs failed, first: %v", len(e.Failed), e.Inputs, e.Failed[0])
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *RunError) Unwrap() []error {
	return e.Failed
}
