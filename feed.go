package signalz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for change processing.
const DefaultDebounce = 100 * time.Millisecond

// Feed watches a Source, decodes every document it emits and writes the
// result into a Signal, either as the whole state or at a path.
//
// A document that fails to decode is dropped and the Signal keeps its
// state. Observers run inside the write; a panic raised by one of them is
// recovered at the Feed boundary and recorded as an apply failure, but the
// state it was notifying about has already been written.
type Feed struct {
	source         Source
	sig            *Signal
	path           string
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	metrics        MetricsProvider
	onStop         func(State)

	state        atomic.Int32
	applied      atomic.Uint64
	lastError    atomic.Pointer[FeedError]
	errorHistory *errorRing

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewFeed creates a Feed writing documents from source into sig.
//
// Instance configuration uses chainable methods before calling Start().
//
// Example:
//
//	feed := signalz.NewFeed(signalz.NewFileSource("flags.yaml"), sig).
//	    Codec(signalz.YAMLCodec{}).
//	    At("flags").
//	    Debounce(200 * time.Millisecond)
//
//	if err := feed.Start(ctx); err != nil {
//	    log.Printf("initial document failed: %v", err)
//	}
func NewFeed(source Source, sig *Signal) *Feed {
	f := &Feed{
		source:   source,
		sig:      sig,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    AutoCodec{},
		metrics:  sig.metrics,
	}
	f.state.Store(int32(StateLoading))
	return f
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// At writes documents at path instead of replacing the whole state.
// Siblings of path are kept. Must be called before Start().
func (f *Feed) At(path string) *Feed {
	f.path = path
	return f
}

// Debounce sets the debounce duration for change processing.
// Changes arriving within this duration are coalesced into a single write.
// Default: 100ms. Must be called before Start().
func (f *Feed) Debounce(d time.Duration) *Feed {
	f.debounce = d
	return f
}

// SyncMode enables synchronous processing for testing.
// In sync mode, changes are only processed by Process(), without debouncing
// or goroutines. Must be called before Start().
func (f *Feed) SyncMode() *Feed {
	f.syncMode = true
	return f
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (f *Feed) Clock(clock clockz.Clock) *Feed {
	f.clock = clock
	return f
}

// Codec sets the codec for decoding documents.
// Default: AutoCodec. Must be called before Start().
func (f *Feed) Codec(codec Codec) *Feed {
	f.codec = codec
	return f
}

// StartupTimeout sets the maximum duration to wait for the first document.
// Default: no timeout. Must be called before Start().
func (f *Feed) StartupTimeout(d time.Duration) *Feed {
	f.startupTimeout = d
	return f
}

// Metrics sets the metrics provider. Default: the Signal's provider.
// Must be called before Start().
func (f *Feed) Metrics(provider MetricsProvider) *Feed {
	f.metrics = provider
	return f
}

// OnStop sets a callback invoked with the final state when the Feed stops
// watching. Must be called before Start().
func (f *Feed) OnStop(fn func(State)) *Feed {
	f.onStop = fn
	return f
}

// ErrorHistorySize sets the number of recent failures to retain.
// Use 0 (default) to only retain the most recent failure via LastError().
// Must be called before Start().
func (f *Feed) ErrorHistorySize(n int) *Feed {
	f.errorHistory = newErrorRing(n)
	return f
}

// State returns the current state of the Feed.
func (f *Feed) State() State {
	return State(f.state.Load())
}

// Applied returns how many documents have been written to the Signal.
func (f *Feed) Applied() uint64 {
	return f.applied.Load()
}

// LastError returns the most recent failure, or nil after a success.
func (f *Feed) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the failures recorded since the last success,
// oldest first. Returns nil unless ErrorHistorySize was set.
func (f *Feed) ErrorHistory() []FeedError {
	return f.errorHistory.all()
}

// Start begins watching. It blocks until the first document is processed
// (success or failure), then continues watching asynchronously.
//
// If the first document fails, Start returns the error but keeps watching
// for valid documents. Start can only be called once.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return errors.New("feed already started")
	}
	f.started = true
	f.mu.Unlock()

	capitan.Emit(ctx, FeedStarted,
		KeySignalID.Field(f.sig.ID()),
		KeyPath.Field(f.path),
		KeyDebounce.Field(f.debounce),
		KeyContentType.Field(f.codec.ContentType()),
	)

	changes, err := f.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start source: %w", err)
	}

	startupCtx := ctx
	if f.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = f.clock.WithTimeout(ctx, f.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if f.startupTimeout > 0 && errors.Is(startupCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("startup timeout: source did not emit within %v", f.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return errors.New("source closed before emitting initial document")
		}
		f.received(ctx)
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		f.changes = changes
		return initialErr
	}

	go f.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next pending document.
// It is only available in sync mode and returns false when nothing is
// pending or the source is closed.
func (f *Feed) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}

	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		f.received(ctx)
		_ = f.process(ctx, raw) //nolint:errcheck // Errors stored via fail
		return true
	default:
		return false
	}
}

func (f *Feed) received(ctx context.Context) {
	capitan.Emit(ctx, FeedChangeReceived, KeySignalID.Field(f.sig.ID()))
	f.metrics.OnChangeReceived()
}

// process decodes one document and writes it to the Signal.
func (f *Feed) process(ctx context.Context, raw []byte) error {
	start := f.clock.Now()
	oldState := f.State()

	doc, err := f.codec.Decode(raw)
	if err != nil {
		f.fail(ctx, oldState, "decode", err, start)
		return fmt.Errorf("decode failed: %w", err)
	}

	if err := f.apply(doc); err != nil {
		f.fail(ctx, oldState, "apply", err, start)
		return fmt.Errorf("apply failed: %w", err)
	}

	f.applied.Add(1)
	f.lastError.Store(nil)
	f.errorHistory.clear()
	f.transitionState(ctx, oldState, StateHealthy)
	capitan.Emit(ctx, FeedApplySucceeded,
		KeySignalID.Field(f.sig.ID()),
		KeyPath.Field(f.path),
	)
	f.metrics.OnFeedSuccess(f.clock.Since(start))

	return nil
}

// apply writes doc and converts an observer panic into an error.
func (f *Feed) apply(doc any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panicked: %v", r)
		}
	}()

	if f.path == "" {
		f.sig.write(func(any) any { return doc })
		return nil
	}
	f.sig.write(func(state any) any {
		return setPath(state, f.path, func(any) any { return doc })
	})
	return nil
}

func (f *Feed) fail(ctx context.Context, oldState State, stage string, err error, start time.Time) {
	fe := FeedError{Stage: stage, Err: err, At: f.clock.Now()}
	f.lastError.Store(&fe)
	f.errorHistory.push(fe)
	f.transitionState(ctx, oldState, f.failureState())

	sig := FeedApplyFailed
	if stage == "decode" {
		sig = FeedDecodeFailed
	}
	capitan.Emit(ctx, sig,
		KeySignalID.Field(f.sig.ID()),
		KeyError.Field(err.Error()),
	)
	f.metrics.OnFeedFailure(stage, f.clock.Since(start))
}

// failureState returns the failure state based on whether a document has
// ever been written.
func (f *Feed) failureState() State {
	if f.applied.Load() == 0 {
		return StateEmpty
	}
	return StateDegraded
}

// transitionState updates the state and emits a state change event if changed.
func (f *Feed) transitionState(ctx context.Context, oldState, newState State) {
	if oldState == newState {
		return
	}
	f.state.Store(int32(newState))
	capitan.Emit(ctx, FeedStateChanged,
		KeySignalID.Field(f.sig.ID()),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	f.metrics.OnFeedStateChange(oldState, newState)
}

// watch processes changes from the source with debouncing.
func (f *Feed) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		finalState := f.State()
		capitan.Emit(ctx, FeedStopped,
			KeySignalID.Field(f.sig.ID()),
			KeyState.Field(finalState.String()),
		)
		if f.onStop != nil {
			f.onStop(finalState)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via fail
				}
				return
			}

			f.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via fail
				hasPending = false
			}
		}
	}
}
