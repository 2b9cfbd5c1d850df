package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrSettingNotFound indicates the setting path doesn't exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates a value has the wrong type for its use.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a value is outside what the setting allows.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound indicates an explicitly named configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrNotLoaded indicates the configuration was changed before Load.
	ErrNotLoaded = errors.New("configuration not loaded")
)

// Problem says what is wrong with a setting value.
type Problem uint8

const (
	// ProblemType is a value of the wrong type.
	ProblemType Problem = iota + 1
	// ProblemRange is a number outside the allowed bounds.
	ProblemRange
	// ProblemChoice is a string that is not one of the allowed names.
	ProblemChoice
)

func (p Problem) String() string {
	switch p {
	case ProblemType:
		return "wrong type"
	case ProblemRange:
		return "out of range"
	case ProblemChoice:
		return "unknown choice"
	default:
		return "invalid"
	}
}

// SettingError reports a value a known setting does not accept.
//
//	search.maxLineLen = 0: out of range, want an integer in 1..16777216
type SettingError struct {
	Path    string
	Value   any
	Problem Problem
	Want    string
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("%s = %v: %s, want %s", e.Path, e.Value, e.Problem, e.Want)
}

// Is matches ErrValidationFailed, and ErrTypeMismatch for type problems.
func (e *SettingError) Is(target error) bool {
	return target == ErrValidationFailed || (target == ErrTypeMismatch && e.Problem == ProblemType)
}

// typeError reports a getter asked for the wrong type.
func typeError(path, want string, v any) error {
	return fmt.Errorf("%s holds %s, not %s: %w", path, typeName(v), want, ErrTypeMismatch)
}
