package tensor

import "github.com/pkg/errors"

// Error kinds. Every error returned by devices and graphs wraps exactly one
// of these, so callers can test for the kind with errors.Is.
var (
	// ErrShape reports incompatible dimensions or invalid shape arguments.
	ErrShape = errors.New("shape error")

	// ErrOutOfMemory reports that a device could not allocate a buffer.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrMemory reports an unknown, stale or foreign buffer handle.
	// It always indicates a caller bug.
	ErrMemory = errors.New("memory error")

	// ErrState reports access to a node value or gradient that has not been computed.
	ErrState = errors.New("state error")

	// ErrGraphMismatch reports nodes from different graphs used together.
	ErrGraphMismatch = errors.New("graph mismatch")
)
