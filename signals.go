package signalz

import "github.com/zoobzio/capitan"

// Signal lifecycle signals.
var (
	// SignalCreated is emitted when a Signal is constructed.
	SignalCreated = capitan.NewSignal(
		"signalz.signal.created",
		"Signal constructed",
	)

	// ValueWritten is emitted after a write replaced the state, before
	// observers are notified.
	ValueWritten = capitan.NewSignal(
		"signalz.value.written",
		"State replaced",
	)
)

// Registry signals.
var (
	// SelectorAdded is emitted for every selector installed or redefined.
	SelectorAdded = capitan.NewSignal(
		"signalz.selector.added",
		"Selector installed",
	)

	// SelectorDeleted is emitted when an installed selector is removed.
	SelectorDeleted = capitan.NewSignal(
		"signalz.selector.deleted",
		"Selector removed",
	)

	// ObserverAdded is emitted when an observer is registered.
	ObserverAdded = capitan.NewSignal(
		"signalz.observer.added",
		"Observer registered",
	)

	// ObserverRemoved is emitted when an observer is unregistered.
	ObserverRemoved = capitan.NewSignal(
		"signalz.observer.removed",
		"Observer unregistered",
	)
)

// Feed signals.
var (
	// FeedStarted is emitted when a Feed begins watching its source.
	FeedStarted = capitan.NewSignal(
		"signalz.feed.started",
		"Feed watching started",
	)

	// FeedStopped is emitted when a Feed stops watching.
	FeedStopped = capitan.NewSignal(
		"signalz.feed.stopped",
		"Feed watching stopped",
	)

	// FeedStateChanged is emitted when a Feed transitions between states.
	FeedStateChanged = capitan.NewSignal(
		"signalz.feed.state.changed",
		"Feed state transition",
	)

	// FeedChangeReceived is emitted when raw data arrives from the source.
	FeedChangeReceived = capitan.NewSignal(
		"signalz.feed.change.received",
		"Raw change received from source",
	)

	// FeedDecodeFailed is emitted when the codec rejects a document.
	FeedDecodeFailed = capitan.NewSignal(
		"signalz.feed.decode.failed",
		"Document decode failed",
	)

	// FeedApplyFailed is emitted when writing a decoded document failed.
	FeedApplyFailed = capitan.NewSignal(
		"signalz.feed.apply.failed",
		"Document write failed",
	)

	// FeedApplySucceeded is emitted when a document was written to the Signal.
	FeedApplySucceeded = capitan.NewSignal(
		"signalz.feed.apply.succeeded",
		"Document written",
	)
)
