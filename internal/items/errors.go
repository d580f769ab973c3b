package items

import "errors"

// Error taxonomy. Handlers map these to HTTP statuses with errors.Is;
// anything else is treated as a storage failure (rolled back, logged,
// surfaced as a generic error).
var (
	// ErrValidation rejects bad input before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound reports an unknown item id. Recoverable, never a fault.
	ErrNotFound = errors.New("item not found")

	// ErrPrecondition rejects a state transition whose guard fails.
	ErrPrecondition = errors.New("precondition failed")

	// ErrBusy reports that another bulk apply currently holds the
	// single-flight lock.
	ErrBusy = errors.New("bulk apply already in progress")
)
