package signalz

import "context"

// Source produces raw documents for a Feed.
// Implementations must emit the current document immediately upon Watch()
// being called so the Feed can load its first state.
type Source interface {
	// Watch begins observing the source and returns a channel that emits
	// raw bytes whenever the document changes. The channel is closed when
	// the context is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// ChannelSource adapts an existing byte channel to a Source.
// Useful for testing and for producers that already push documents.
type ChannelSource struct {
	ch       <-chan []byte
	passThru bool
}

// NewChannelSource creates a ChannelSource that forwards values from ch
// through its own goroutine until ch closes or the context is canceled.
func NewChannelSource(ch <-chan []byte) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// NewSyncChannelSource creates a ChannelSource that hands ch to the Feed
// directly. Use with Feed.SyncMode for deterministic tests.
func NewSyncChannelSource(ch <-chan []byte) *ChannelSource {
	return &ChannelSource{ch: ch, passThru: true}
}

// Watch returns a channel that emits values from the wrapped channel.
func (s *ChannelSource) Watch(ctx context.Context) (<-chan []byte, error) {
	if s.passThru {
		return s.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-s.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
