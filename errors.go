package signalz

import "errors"

// ReservedName is the selector name that can never be installed or deleted.
// It is held by the Signal's own whole-state accessor.
const ReservedName = "value"

var (
	// ErrReservedName is returned when a selector named ReservedName is
	// defined or deleted.
	ErrReservedName = errors.New("selector name not allowed")

	// ErrUnknownSelector is returned by the by-name accessor API when no
	// selector with the requested name is installed.
	ErrUnknownSelector = errors.New("unknown selector")
)
