package smartspread

import "errors"

// Error taxonomy for the package. Callers distinguish failure classes with
// errors.Is; anything not matching a sentinel is a wrapped remote failure.
var (
	// ErrInvalidArgument indicates an empty or malformed caller-supplied
	// parameter. Never retried, never raised for remote conditions.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates an absent spreadsheet or tab. Callers may catch
	// it to trigger creation.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates tab data that is empty or has no header row.
	ErrInvalidState = errors.New("invalid state")
)
