// Package document defines domain-specific errors
package document

import "errors"

var (
	ErrNilDocument       = errors.New("document cannot be nil")
	ErrInvalidDocumentID = errors.New("invalid document ID")
	ErrDocumentNotFound  = errors.New("document not found")
)
