package signalz

// State is the lifecycle state of a Feed.
type State int32

const (
	// StateLoading indicates the Feed has not yet processed its first document.
	StateLoading State = iota

	// StateHealthy indicates the last document was written to the Signal.
	StateHealthy

	// StateDegraded indicates the last document failed. The Signal keeps the
	// state written by the last successful document.
	StateDegraded

	// StateEmpty indicates no document has ever been written. The Signal
	// still holds its initial state and the Feed keeps watching.
	StateEmpty
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
