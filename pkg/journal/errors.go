package journal

import (
	"errors"
	"fmt"
)

// Sentinel errors for failures callers are expected to branch on. Handlers map
// these onto HTTP statuses (404, 400, 409).
var (
	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = errors.New("journal not found")
	// ErrInvalidArgument is returned for malformed ids and out-of-range
	// year/quarter values, before any store access happens.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidTransition is returned when publish is attempted on a journal
	// that is not in the accepted status.
	ErrInvalidTransition = errors.New("only accepted journals can be published")
	// ErrDuplicateDOI is returned when an explicitly supplied DOI collides
	// with an existing record.
	ErrDuplicateDOI = errors.New("doi already in use")
)

// ValidationError reports missing or malformed required fields. The whole
// operation is rejected; nothing is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// UpstreamFailure wraps a blob-store or mail collaborator error. It never
// rolls back the record mutation it accompanied; callers log it and move on.
type UpstreamFailure struct {
	Op  string
	Err error
}

func (e *UpstreamFailure) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamFailure) Unwrap() error { return e.Err }
