// Package redis provides a signalz.Source that reads a Redis key and
// re-emits it on keyspace notifications.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/zoobzio/signalz"
)

// Source emits the value of a Redis key whenever it is written.
// Requires keyspace notifications to be enabled:
//
//	CONFIG SET notify-keyspace-events KEA
type Source struct {
	client *redis.Client
	key    string
	db     int
}

// Option configures a Source.
type Option func(*Source)

// WithDB sets the database number used in the keyspace channel name.
// Defaults to 0.
func WithDB(db int) Option {
	return func(s *Source) {
		s.db = db
	}
}

// New creates a Source for key.
func New(client *redis.Client, key string, opts ...Option) *Source {
	s := &Source{
		client: client,
		key:    key,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Channel returns the keyspace channel the Source subscribes to.
func (s *Source) Channel() string {
	return fmt.Sprintf("__keyspace@%d__:%s", s.db, s.key)
}

// Watch subscribes to the key's keyspace channel and emits its current value,
// then the new value after every string write. A missing key emits nothing
// until it is first set.
func (s *Source) Watch(ctx context.Context) (<-chan []byte, error) {
	pubsub := s.client.Subscribe(ctx, s.Channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		val, found, err := s.get(ctx)
		if err != nil {
			return
		}
		if found && !s.send(ctx, out, val) {
			return
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if !isWrite(msg.Payload) {
					continue
				}
				val, found, err := s.get(ctx)
				if err != nil || !found {
					continue
				}
				if !s.send(ctx, out, val) {
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *Source) get(ctx context.Context) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (*Source) send(ctx context.Context, out chan<- []byte, val []byte) bool {
	select {
	case out <- val:
		return true
	case <-ctx.Done():
		return false
	}
}

// isWrite reports whether a keyspace event replaced the string value.
func isWrite(event string) bool {
	switch event {
	case "set", "mset", "setex", "psetex", "setnx", "setrange", "append":
		return true
	}
	return false
}

var _ signalz.Source = (*Source)(nil)
