package signalz

import (
	"sync"
	"time"
)

// FeedError is a failure recorded by a Feed.
type FeedError struct {
	// Stage is where processing failed: "decode" or "apply".
	Stage string

	// Err is the underlying error.
	Err error

	// At is when the failure was recorded, according to the Feed clock.
	At time.Time
}

// Error implements error.
func (e FeedError) Error() string {
	return e.Stage + " failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e FeedError) Unwrap() error {
	return e.Err
}

// errorRing is a thread-safe ring buffer for storing recent feed failures.
type errorRing struct {
	mu     sync.RWMutex
	errors []FeedError
	size   int
	head   int
	count  int
}

// newErrorRing creates a ring holding up to size failures.
// If size is 0 or less, the ring is disabled and nil is returned; every
// method is safe on a nil ring.
func newErrorRing(size int) *errorRing {
	if size <= 0 {
		return nil
	}
	return &errorRing{
		errors: make([]FeedError, size),
		size:   size,
	}
}

// push records a failure, overwriting the oldest when full.
func (r *errorRing) push(err FeedError) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors[r.head] = err
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// clear forgets every recorded failure.
func (r *errorRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.errors)
	r.head = 0
	r.count = 0
}

// all returns the recorded failures, oldest first.
func (r *errorRing) all() []FeedError {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	result := make([]FeedError, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := range r.count {
		result[i] = r.errors[(start+i)%r.size]
	}
	return result
}
