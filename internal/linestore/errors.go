package linestore

import "errors"

// Errors returned by store operations.
var (
	ErrLineOutOfRange = errors.New("line out of range")
)
