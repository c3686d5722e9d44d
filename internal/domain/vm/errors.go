package vm

import "errors"

var (
	// ErrUnknownOS is returned when an OS id is not in the catalog.
	ErrUnknownOS = errors.New("unknown operating system")
	// ErrNotPermitted is returned when an operation is not valid in the current state.
	ErrNotPermitted = errors.New("operation not permitted in current state")
	// ErrInvalidURL is returned for URLs that are not http or https.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrTokenRequired is returned when remote mode has no session API token.
	ErrTokenRequired = errors.New("session API token required")
	// ErrBackend wraps failures of the session backend.
	ErrBackend = errors.New("session backend failed")
)
