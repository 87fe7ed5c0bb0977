package signalz

import (
	"sync"
	"sync/atomic"
)

// RenderFunc is the host re-render primitive. A Binding calls it with the
// newly selected value whenever that value changes.
type RenderFunc func(value any)

// Binding pairs one observer with one last-seen value cell. It is what a
// host holds for the lifetime of a render scope; Close ends it.
//
// Two bindings on the same target never share their last-seen value, so
// each decides independently whether to re-render.
type Binding struct {
	sig    *Signal
	id     observerID
	target Target
	equal  Equal
	render RenderFunc

	mu     sync.Mutex
	last   any
	closed atomic.Bool
}

// bind seeds the binding with the current value of target and registers
// its observer.
func (s *Signal) bind(target Target, eq Equal, render RenderFunc) *Binding {
	b := &Binding{
		sig:    s,
		id:     nextObserverID(),
		target: target,
		equal:  eq,
		render: render,
	}
	s.addObserver(b.id, b.observe, func(state any) {
		b.last = target.Resolve(state)
	})
	return b
}

// observe re-evaluates the target against the current state.
func (b *Binding) observe() {
	next := b.target.Resolve(b.sig.Peek())

	b.mu.Lock()
	if b.equal(next, b.last) {
		b.mu.Unlock()
		b.sig.metrics.OnNotify(NotifySkipped)
		return
	}
	b.last = next
	b.mu.Unlock()

	b.sig.metrics.OnNotify(NotifyRendered)
	if b.render != nil {
		b.render(next)
	}
}

// Value returns the value last delivered to the host.
func (b *Binding) Value() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Target returns what the binding observes.
func (b *Binding) Target() Target {
	return b.target
}

// Close unregisters the binding's observer. Later writes do not reach it
// and other observers are unaffected. Close is idempotent.
func (b *Binding) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.sig.removeObserver(b.id)
}

// Closed reports whether Close has been called.
func (b *Binding) Closed() bool {
	return b.closed.Load()
}
