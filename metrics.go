package signalz

import "time"

// Notification outcomes reported through MetricsProvider.OnNotify.
const (
	NotifyRendered = "rendered"
	NotifySkipped  = "skipped"
)

// Selector operations reported through MetricsProvider.OnSelectorChange.
const (
	SelectorOpAdd    = "add"
	SelectorOpDelete = "delete"
)

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key Signal and Feed events.
type MetricsProvider interface {
	// OnWrite is called after a write replaced the state. Observers is the
	// number of observers about to be notified; duration covers computing
	// and storing the new state.
	OnWrite(observers int, duration time.Duration)

	// OnNotify is called once per binding evaluation with NotifyRendered or
	// NotifySkipped.
	OnNotify(outcome string)

	// OnObserversChange is called when an observer is added or removed.
	OnObserversChange(active int)

	// OnSelectorChange is called with SelectorOpAdd or SelectorOpDelete.
	OnSelectorChange(op string, installed int)

	// OnFeedStateChange is called when a Feed transitions between states.
	OnFeedStateChange(from, to State)

	// OnFeedSuccess is called when a document was decoded and written.
	OnFeedSuccess(duration time.Duration)

	// OnFeedFailure is called when processing fails.
	// Stage is "decode" or "apply".
	OnFeedFailure(stage string, duration time.Duration)

	// OnChangeReceived is called when raw data is received from a Feed source.
	OnChangeReceived()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnWrite(_ int, _ time.Duration)          {}
func (NoOpMetricsProvider) OnNotify(_ string)                       {}
func (NoOpMetricsProvider) OnObserversChange(_ int)                 {}
func (NoOpMetricsProvider) OnSelectorChange(_ string, _ int)        {}
func (NoOpMetricsProvider) OnFeedStateChange(_, _ State)            {}
func (NoOpMetricsProvider) OnFeedSuccess(_ time.Duration)           {}
func (NoOpMetricsProvider) OnFeedFailure(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnChangeReceived()                       {}

var _ MetricsProvider = NoOpMetricsProvider{}
