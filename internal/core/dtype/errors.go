// Package dtype defines domain-specific errors
package dtype

import "errors"

var (
	// ErrUntypedMatch signals a dtype-vs-dtype comparison involving Untyped.
	// Untyped ports must always be matched by value; hitting this error
	// means the caller skipped the value-check fallback.
	ErrUntypedMatch = errors.New("untyped dtypes must be matched by value, not by dtype")
	// ErrUnknownKind signals a dtype with a kind outside the known set.
	ErrUnknownKind = errors.New("unknown dtype kind")
	// ErrUnknownClass signals a class name with no registered class.
	ErrUnknownClass = errors.New("unknown dtype class")
)
