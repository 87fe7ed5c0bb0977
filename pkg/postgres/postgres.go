// Package postgres provides a signalz.Source backed by a PostgreSQL row,
// refreshed on LISTEN/NOTIFY.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zoobzio/signalz"
)

// Source emits the value column of a keyed row whenever a notification
// carrying that key arrives on the channel. A trigger must publish the key:
//
//	CREATE OR REPLACE FUNCTION notify_state_change() RETURNS trigger AS $$
//	BEGIN
//	    PERFORM pg_notify('state_changed', NEW.key);
//	    RETURN NEW;
//	END;
//	$$ LANGUAGE plpgsql;
//
//	CREATE TRIGGER state_change_trigger
//	    AFTER INSERT OR UPDATE ON signal_state
//	    FOR EACH ROW EXECUTE FUNCTION notify_state_change();
type Source struct {
	pool    *pgxpool.Pool
	channel string
	key     string
	table   string
}

// Option configures a Source.
type Option func(*Source)

// WithTable sets the table holding key/value rows.
// Defaults to "signal_state".
func WithTable(table string) Option {
	return func(s *Source) {
		s.table = table
	}
}

// New creates a Source for the row identified by key, listening on channel.
func New(pool *pgxpool.Pool, channel, key string, opts ...Option) *Source {
	s := &Source{
		pool:    pool,
		channel: channel,
		key:     key,
		table:   "signal_state",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch holds a pooled connection for LISTEN, emits the current value and
// then the new value after every matching notification. A missing row emits
// nothing until it is inserted.
func (s *Source) Watch(ctx context.Context) (<-chan []byte, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on channel %s: %w", s.channel, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer conn.Release()

		if value, err := s.fetch(ctx); err == nil && value != nil {
			select {
			case out <- value:
			case <-ctx.Done():
				return
			}
		}

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if n.Payload != s.key {
				continue
			}

			value, err := s.fetch(ctx)
			if err != nil || value == nil {
				continue
			}
			select {
			case out <- value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Query returns the statement used to read the row.
func (s *Source) Query() string {
	return fmt.Sprintf("SELECT value FROM %s WHERE key = $1", pgx.Identifier{s.table}.Sanitize())
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, s.Query(), s.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

var _ signalz.Source = (*Source)(nil)
