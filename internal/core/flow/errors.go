// Package flow defines domain-specific errors
package flow

import "errors"

var (
	// Structural errors - host contract violations, raised immediately
	ErrNilClass           = errors.New("node class cannot be nil")
	ErrNodeNotFound       = errors.New("node not found in flow")
	ErrNodeHasConnections = errors.New("node still has connections; remove them first")
	ErrNodeUpdating       = errors.New("node cannot be removed while it is updating")
	ErrConnectionNotFound = errors.New("connection not found in flow")
	ErrNilPort            = errors.New("port cannot be nil")
	ErrInvalidConnection  = errors.New("serialized connection is not valid")
	ErrPortOutOfRange     = errors.New("port index out of range")
	ErrNotDataPort        = errors.New("operation requires a data port")
	ErrNotExecPort        = errors.New("operation requires an exec port")
	ErrInvalidMode        = errors.New("invalid algorithm mode")

	// ErrComputation wraps errors raised by a node's user computation.
	// Propagation stops at the failing node and its outputs are reset.
	ErrComputation = errors.New("node computation failed")
)
