package signalz

import "github.com/zoobzio/capitan"

// Field keys for Signal and Feed events.
var (
	// KeySignalID is the unique id of the Signal.
	KeySignalID = capitan.NewStringKey("signal_id")

	// KeySignalName is the optional human-readable Signal name.
	KeySignalName = capitan.NewStringKey("signal_name")

	// KeySelector is the selector name.
	KeySelector = capitan.NewStringKey("selector")

	// KeyPath is a selector or feed target path.
	KeyPath = capitan.NewStringKey("path")

	// KeyObservers is the number of observers registered at the time of the event.
	KeyObservers = capitan.NewIntKey("observers")

	// KeyDuration is how long a write took to replace the state.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyState is the current state of a Feed.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyContentType is the codec content type used by a Feed.
	KeyContentType = capitan.NewStringKey("content_type")
)
