// Package testing provides test utilities for code built on signalz.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/signalz"
)

// Recorder collects the values delivered to a binding's render func.
// It is safe for use from a Feed goroutine.
type Recorder struct {
	mu     sync.Mutex
	values []any
}

// Render records v. Pass it as a signalz.RenderFunc.
func (r *Recorder) Render(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// Count returns how many renders were recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Values returns a copy of the recorded values in render order.
func (r *Recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// Last returns the most recent value, or nil and false if nothing rendered.
func (r *Recorder) Last() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return nil, false
	}
	return r.values[len(r.values)-1], true
}

// Reset discards recorded values.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = nil
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the feed reaches the expected state or timeout occurs.
func WaitForState(t *testing.T, f *signalz.Feed, expected signalz.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return f.State() == expected
	})
}

// RequireState fails the test immediately if the feed is not in the expected state.
func RequireState(t *testing.T, f *signalz.Feed, expected signalz.State) {
	t.Helper()
	if got := f.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireValue fails the test if the value at path does not satisfy check.
func RequireValue(t *testing.T, sig *signalz.Signal, path string, check func(any) bool) {
	t.Helper()
	v := sig.Get(path)
	if !check(v) {
		t.Fatalf("value check failed at %q: %#v", path, v)
	}
}

// NewTestFeed creates a sync-mode Feed into sig backed by a channel.
// Returns the feed and a channel for sending documents.
func NewTestFeed(t *testing.T, sig *signalz.Signal) (*signalz.Feed, chan<- []byte) {
	t.Helper()
	ch := make(chan []byte, 10)
	f := signalz.NewFeed(signalz.NewSyncChannelSource(ch), sig).SyncMode()
	return f, ch
}

// StartFeed starts f and fails the test if the first document is rejected.
func StartFeed(t *testing.T, ctx context.Context, f *signalz.Feed) {
	t.Helper()
	if err := f.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}
