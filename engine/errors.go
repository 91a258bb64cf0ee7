package engine

import "errors"

var (
	// ErrSchemaMismatch signals a call contract violation: a table handed to a
	// stage does not carry the columns the requested resource needs.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnknownResource is returned when a resource name cannot be resolved.
	ErrUnknownResource = errors.New("unknown resource")
)
