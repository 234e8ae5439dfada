// Package session defines domain-specific errors
package session

import "errors"

var (
	ErrUnknownNodeClass  = errors.New("node class not registered")
	ErrInvalidClassTitle = errors.New("node class title cannot be empty")
	ErrScriptNotFound    = errors.New("script not found")
	ErrDuplicateScript   = errors.New("script title already in use")
)
