package signalz

import "sync/atomic"

// Observer is invoked after every write to the Signal it is registered on.
type Observer func()

// observerID is the identity of one registration. Funcs are not comparable
// in Go, so removal is keyed by this id instead of the func value.
type observerID uint64

var observerSeq atomic.Uint64

func nextObserverID() observerID {
	return observerID(observerSeq.Add(1))
}

type observerEntry struct {
	id observerID
	fn Observer
}

// observers is the ordered observer list of a Signal. It is not safe for
// concurrent use; the owning Signal serializes access.
type observers struct {
	entries []observerEntry
}

// add appends fn under id. A second registration of an id already present
// is ignored.
func (o *observers) add(id observerID, fn Observer) bool {
	for _, e := range o.entries {
		if e.id == id {
			return false
		}
	}
	o.entries = append(o.entries, observerEntry{id: id, fn: fn})
	return true
}

// remove deletes exactly the registration with id, keeping the order of the
// remaining entries.
func (o *observers) remove(id observerID) bool {
	for i, e := range o.entries {
		if e.id == id {
			copy(o.entries[i:], o.entries[i+1:])
			o.entries[len(o.entries)-1] = observerEntry{}
			o.entries = o.entries[:len(o.entries)-1]
			return true
		}
	}
	return false
}

// snapshot copies the current observers in registration order.
func (o *observers) snapshot() []Observer {
	out := make([]Observer, len(o.entries))
	for i, e := range o.entries {
		out[i] = e.fn
	}
	return out
}

func (o *observers) len() int {
	return len(o.entries)
}
