package signalz

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Signal holds a state value and notifies observers after every write.
//
// Reads are bound through GetValue, Value or a named selector; each binding
// keeps its own last-seen value and only calls its render func when its
// comparator reports a change. Writes are never batched: SetValue, Update
// and selector setters each run one synchronous notification pass over all
// observers in registration order.
//
// A panic raised by an observer propagates out of the write that triggered
// it and the observers after it in that pass do not run.
type Signal struct {
	id      string
	name    string
	ctx     context.Context
	equal   Equal
	clock   clockz.Clock
	metrics MetricsProvider

	mu        sync.Mutex
	state     any
	observers observers
	selectors selectorRegistry
}

// config holds configuration options for a Signal.
type config struct {
	name      string
	ctx       context.Context
	equal     Equal
	clock     clockz.Clock
	metrics   MetricsProvider
	selectors []SelectorDef
}

// Option configures a Signal.
type Option func(*config)

// WithEqual sets the Signal-wide comparator used by bindings that were not
// given a more specific one. Default: Identical.
func WithEqual(fn Equal) Option {
	return func(c *config) {
		c.equal = fn
	}
}

// WithSelectors installs selectors at construction, in order.
func WithSelectors(defs ...SelectorDef) Option {
	return func(c *config) {
		c.selectors = append(c.selectors, defs...)
	}
}

// WithContext sets the context attached to emitted events.
// Default: context.Background().
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithMetrics sets a metrics provider for observability integration.
func WithMetrics(provider MetricsProvider) Option {
	return func(c *config) {
		c.metrics = provider
	}
}

// WithClock sets a custom clock used to time writes.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithName attaches a human-readable name to the Signal's events.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// New creates a Signal whose state is initial.
//
// It fails only when WithSelectors names the reserved selector "value", in
// which case no Signal is returned.
//
// Example:
//
//	sig, err := signalz.New(
//	    map[string]any{"count": 0},
//	    signalz.WithSelectors(signalz.SelectorDef{Name: "count", Path: "count"}),
//	)
//	if err != nil {
//	    return err
//	}
//	sig.SetSelector("count", 5)
func New(initial any, opts ...Option) (*Signal, error) {
	cfg := &config{
		ctx:   context.Background(),
		clock: clockz.RealClock,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Signal{
		id:      uuid.NewString(),
		name:    cfg.name,
		ctx:     cfg.ctx,
		equal:   resolveEqual(cfg.equal),
		clock:   cfg.clock,
		metrics: cfg.metrics,
		state:   initial,
	}
	if s.metrics == nil {
		s.metrics = NoOpMetricsProvider{}
	}

	if err := s.AddSelectors(cfg.selectors...); err != nil {
		return nil, err
	}

	s.emit(SignalCreated)
	return s, nil
}

// ID returns the unique identifier of the Signal.
func (s *Signal) ID() string {
	return s.id
}

// Name returns the name set with WithName.
func (s *Signal) Name() string {
	return s.name
}

// Peek returns the current state without binding to it.
func (s *Signal) Peek() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Get returns the value at path without binding to it, or nil when any
// segment of the path is missing.
func (s *Signal) Get(path string) any {
	return Path(path).Resolve(s.Peek())
}

// SetValue replaces the state and notifies every observer.
// If data is a func(any) any it is applied to the current state and its
// result becomes the new state; any other value becomes the new state as is.
func (s *Signal) SetValue(data any) {
	if fn, ok := data.(func(any) any); ok {
		s.write(fn)
		return
	}
	s.write(func(any) any { return data })
}

// Update replaces the state with fn(current) and notifies every observer.
// fn runs while the Signal is locked and must not call back into it.
func (s *Signal) Update(fn func(state any) any) {
	s.write(fn)
}

// write is the single path through which the state changes.
func (s *Signal) write(fn func(any) any) {
	start := s.clock.Now()
	notify := s.replace(fn)
	elapsed := s.clock.Since(start)
	s.emit(ValueWritten,
		KeyObservers.Field(len(notify)),
		KeyDuration.Field(elapsed),
	)
	s.metrics.OnWrite(len(notify), elapsed)

	for _, obs := range notify {
		obs()
	}
}

// replace stores fn(state) and returns the observers to notify. A panicking
// fn leaves the state unchanged and the Signal unlocked.
func (s *Signal) replace(fn func(any) any) []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.observers.snapshot()
}

// Subscribe registers fn to run after every write and returns a func that
// unregisters exactly this registration. The returned func is idempotent.
func (s *Signal) Subscribe(fn Observer) (cancel func()) {
	id := nextObserverID()
	s.addObserver(id, fn, nil)

	var once sync.Once
	return func() {
		once.Do(func() { s.removeObserver(id) })
	}
}

// Observers returns the number of registered observers.
func (s *Signal) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observers.len()
}

// addObserver registers fn. If seed is non-nil it is called with the state
// in the same critical section, so no write can fall between the two.
func (s *Signal) addObserver(id observerID, fn Observer, seed func(state any)) {
	added, active := s.register(id, fn, seed)
	if added {
		s.emit(ObserverAdded, KeyObservers.Field(active))
		s.metrics.OnObserversChange(active)
	}
}

func (s *Signal) register(id observerID, fn Observer, seed func(any)) (added bool, active int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seed != nil {
		seed(s.state)
	}
	added = s.observers.add(id, fn)
	return added, s.observers.len()
}

func (s *Signal) removeObserver(id observerID) {
	s.mu.Lock()
	removed := s.observers.remove(id)
	active := s.observers.len()
	s.mu.Unlock()

	if removed {
		s.emit(ObserverRemoved, KeyObservers.Field(active))
		s.metrics.OnObserversChange(active)
	}
}

// GetValue binds a read of target. The returned Binding holds the current
// value of target and calls render with the new value whenever a write
// changes it according to eq. A nil eq falls back to the Signal comparator.
// render may be nil when only Binding.Value is needed.
func (s *Signal) GetValue(target Target, eq Equal, render RenderFunc) *Binding {
	return s.bind(target, resolveEqual(eq, s.equal), render)
}

// Value binds a read of the whole state using the Signal comparator.
func (s *Signal) Value(render RenderFunc) *Binding {
	return s.GetValue(Root, nil, render)
}

// emit sends a capitan event tagged with the Signal identity.
func (s *Signal) emit(sig capitan.Signal, fields ...capitan.Field) {
	all := make([]capitan.Field, 0, len(fields)+2)
	all = append(all, KeySignalID.Field(s.id))
	if s.name != "" {
		all = append(all, KeySignalName.Field(s.name))
	}
	all = append(all, fields...)
	capitan.Emit(s.ctx, sig, all...)
}
