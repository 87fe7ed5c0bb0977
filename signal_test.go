package signalz

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// renders records the values a binding delivered to its host.
type renders struct {
	values []any
}

func (r *renders) render(v any) {
	r.values = append(r.values, v)
}

func (r *renders) count() int {
	return len(r.values)
}

func mustNew(t *testing.T, initial any, opts ...Option) *Signal {
	t.Helper()
	sig, err := New(initial, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sig
}

func TestNew_InitialState(t *testing.T) {
	initial := map[string]any{"count": 0}
	sig := mustNew(t, initial)

	if !Identical(sig.Peek(), initial) {
		t.Errorf("expected initial state to be stored as is, got %v", sig.Peek())
	}
	if sig.ID() == "" {
		t.Error("expected signal id")
	}
	if sig.Observers() != 0 {
		t.Errorf("expected no observers, got %d", sig.Observers())
	}
}

func TestNew_WithName(t *testing.T) {
	sig := mustNew(t, nil, WithName("cart"), WithContext(context.Background()))
	if sig.Name() != "cart" {
		t.Errorf("expected name cart, got %q", sig.Name())
	}
}

func TestNew_ReservedSelectorFails(t *testing.T) {
	sig, err := New(nil, WithSelectors(SelectorDef{Name: "value", Path: "a"}))
	if err == nil {
		t.Fatal("expected error for reserved selector name")
	}
	if sig != nil {
		t.Error("expected no signal on error")
	}
}

func TestSignal_SetValue_ReplacesState(t *testing.T) {
	sig := mustNew(t, 1)
	sig.SetValue(2)

	if sig.Peek() != 2 {
		t.Errorf("expected 2, got %v", sig.Peek())
	}
}

func TestSignal_SetValue_FunctionalUpdate(t *testing.T) {
	sig := mustNew(t, 1)

	var seen any
	sig.SetValue(func(current any) any {
		seen = current
		return current.(int) + 10
	})

	if seen != 1 {
		t.Errorf("expected updater to receive current state 1, got %v", seen)
	}
	if sig.Peek() != 11 {
		t.Errorf("expected 11, got %v", sig.Peek())
	}
}

func TestSignal_Update(t *testing.T) {
	sig := mustNew(t, "a")
	sig.Update(func(s any) any { return s.(string) + "b" })

	if sig.Peek() != "ab" {
		t.Errorf("expected ab, got %v", sig.Peek())
	}
}

func TestSignal_Get_MissingPath(t *testing.T) {
	sig := mustNew(t, map[string]any{"a": map[string]any{}})

	if v := sig.Get("a.b.c"); v != nil {
		t.Errorf("expected nil for missing path, got %v", v)
	}
}

func TestSignal_NotifiesInRegistrationOrder(t *testing.T) {
	sig := mustNew(t, 0)

	var order []int
	for i := range 3 {
		sig.Subscribe(func() { order = append(order, i) })
	}

	sig.SetValue(1)

	if !reflect.DeepEqual(order, []int{0, 1, 2}) {
		t.Errorf("expected [0 1 2], got %v", order)
	}
}

func TestSignal_EveryWriteNotifies(t *testing.T) {
	sig := mustNew(t, 0)

	calls := 0
	sig.Subscribe(func() { calls++ })

	sig.SetValue(0)
	sig.SetValue(0)
	sig.SetValue(1)

	if calls != 3 {
		t.Errorf("expected 3 observer calls (no batching), got %d", calls)
	}
}

func TestSignal_Subscribe_CancelRemovesOnlyThatObserver(t *testing.T) {
	sig := mustNew(t, 0)

	var a, b, c int
	sig.Subscribe(func() { a++ })
	cancelB := sig.Subscribe(func() { b++ })
	sig.Subscribe(func() { c++ })

	cancelB()
	cancelB()
	sig.SetValue(1)

	if a != 1 || b != 0 || c != 1 {
		t.Errorf("expected a=1 b=0 c=1, got a=%d b=%d c=%d", a, b, c)
	}
	if sig.Observers() != 2 {
		t.Errorf("expected 2 observers, got %d", sig.Observers())
	}
}

func TestSignal_ObserverPanicPropagates(t *testing.T) {
	sig := mustNew(t, 0)

	after := false
	sig.Subscribe(func() { panic("render failed") })
	sig.Subscribe(func() { after = true })

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate out of SetValue")
			}
		}()
		sig.SetValue(1)
	}()

	if after {
		t.Error("expected observers after the failing one not to run")
	}
	if sig.Peek() != 1 {
		t.Errorf("expected state to be written before notification, got %v", sig.Peek())
	}

	// The Signal stays usable after a failed pass.
	sig.SetValue(2)
	if sig.Peek() != 2 {
		t.Errorf("expected 2, got %v", sig.Peek())
	}
}

func TestSignal_UpdaterPanicLeavesSignalUsable(t *testing.T) {
	sig := mustNew(t, map[string]any{"items": []any{}},
		WithSelectors(SelectorDef{Name: "first", Path: "items.0"}))

	calls := 0
	sig.Subscribe(func() { calls++ })

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected updater panic to propagate")
			}
		}()
		sig.Update(func(any) any { panic("boom") })
	}()

	done := make(chan any, 1)
	go func() { done <- sig.Peek() }()
	select {
	case state := <-done:
		if Path("items").Resolve(state) == nil {
			t.Errorf("expected state to be unchanged, got %v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("Peek blocked after an updater panic")
	}
	if calls != 0 {
		t.Errorf("expected no notification for a failed write, got %d", calls)
	}

	if err := sig.SetSelector("first", 1); err != nil {
		t.Fatalf("SetSelector() error = %v", err)
	}
	if sig.Get("items.0") != 1 || calls != 1 {
		t.Errorf("expected a later write to succeed, got %v after %d calls", sig.Get("items.0"), calls)
	}
}

func TestSignal_ObserverMayReadAndUnsubscribe(t *testing.T) {
	sig := mustNew(t, 0)

	var seen []any
	var cancel func()
	cancel = sig.Subscribe(func() {
		seen = append(seen, sig.Peek())
		cancel()
	})

	sig.SetValue(1)
	sig.SetValue(2)

	if !reflect.DeepEqual(seen, []any{1}) {
		t.Errorf("expected observer to run once with 1, got %v", seen)
	}
}

func TestSignal_RemovedMidPassStillRunsInThatPass(t *testing.T) {
	sig := mustNew(t, 0)

	var cancelSecond func()
	second := 0
	sig.Subscribe(func() { cancelSecond() })
	cancelSecond = sig.Subscribe(func() { second++ })

	sig.SetValue(1)
	sig.SetValue(2)

	if second != 1 {
		t.Errorf("expected second observer to run only in the first pass, got %d", second)
	}
}

func TestSignal_Value_BindsWholeState(t *testing.T) {
	sig := mustNew(t, 1)

	var r renders
	b := sig.Value(r.render)
	defer b.Close()

	if b.Value() != 1 {
		t.Errorf("expected initial value 1, got %v", b.Value())
	}

	sig.SetValue(1)
	if r.count() != 0 {
		t.Errorf("expected no render for identical state, got %d", r.count())
	}

	sig.SetValue(2)
	if r.count() != 1 || b.Value() != 2 {
		t.Errorf("expected one render with 2, got %v (value %v)", r.values, b.Value())
	}
}

func TestSignal_WithEqual_AppliesToBindings(t *testing.T) {
	sig := mustNew(t, map[string]any{"n": 1}, WithEqual(DeepEqual))

	var r renders
	b := sig.Value(r.render)
	defer b.Close()

	sig.SetValue(map[string]any{"n": 1})
	if r.count() != 0 {
		t.Errorf("expected deep-equal state not to render, got %d", r.count())
	}

	sig.SetValue(map[string]any{"n": 2})
	if r.count() != 1 {
		t.Errorf("expected 1 render, got %d", r.count())
	}
}

func TestSignal_GetValue_ExplicitEqualWins(t *testing.T) {
	never := func(_, _ any) bool { return false }
	sig := mustNew(t, 1, WithEqual(func(_, _ any) bool { return true }))

	var r renders
	b := sig.GetValue(Root, never, r.render)
	defer b.Close()

	sig.SetValue(1)
	if r.count() != 1 {
		t.Errorf("expected explicit comparator to win, got %d renders", r.count())
	}
}

func TestSignal_MetricsOnWrite(t *testing.T) {
	clock := clockz.NewFakeClock()
	m := &recordingMetrics{}
	sig := mustNew(t, 0, WithMetrics(m), WithClock(clock))

	sig.Subscribe(func() {})
	sig.Subscribe(func() {})
	sig.SetValue(1)

	if m.writes != 1 {
		t.Errorf("expected 1 write, got %d", m.writes)
	}
	if m.lastObservers != 2 {
		t.Errorf("expected 2 observers notified, got %d", m.lastObservers)
	}
	if m.lastDuration != 0 {
		t.Errorf("expected zero duration on a fake clock, got %v", m.lastDuration)
	}
	if m.active != 2 {
		t.Errorf("expected 2 active observers, got %d", m.active)
	}
}

// recordingMetrics captures MetricsProvider callbacks.
type recordingMetrics struct {
	NoOpMetricsProvider
	writes        int
	lastObservers int
	lastDuration  time.Duration
	active        int
	rendered      int
	skipped       int
	selectorOps   []string
	transitions   []string
	successes     int
	failures      []string
	received      int
}

func (m *recordingMetrics) OnWrite(observers int, d time.Duration) {
	m.writes++
	m.lastObservers = observers
	m.lastDuration = d
}

func (m *recordingMetrics) OnNotify(outcome string) {
	if outcome == NotifyRendered {
		m.rendered++
	} else {
		m.skipped++
	}
}

func (m *recordingMetrics) OnObserversChange(active int) { m.active = active }

func (m *recordingMetrics) OnSelectorChange(op string, _ int) {
	m.selectorOps = append(m.selectorOps, op)
}

func (m *recordingMetrics) OnFeedStateChange(from, to State) {
	m.transitions = append(m.transitions, from.String()+"->"+to.String())
}

func (m *recordingMetrics) OnFeedSuccess(_ time.Duration) { m.successes++ }

func (m *recordingMetrics) OnFeedFailure(stage string, _ time.Duration) {
	m.failures = append(m.failures, stage)
}

func (m *recordingMetrics) OnChangeReceived() { m.received++ }
