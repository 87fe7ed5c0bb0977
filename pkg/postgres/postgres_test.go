package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zoobzio/signalz"
)

func TestSource_Query(t *testing.T) {
	if got := New(nil, "ch", "k").Query(); got != `SELECT value FROM "signal_state" WHERE key = $1` {
		t.Errorf("unexpected default query %q", got)
	}
	if got := New(nil, "ch", "k", WithTable(`odd"name`)).Query(); got != `SELECT value FROM "odd""name" WHERE key = $1` {
		t.Errorf("expected table name to be quoted, got %q", got)
	}
}

// setupPostgres connects to the database named by SIGNALZ_TEST_POSTGRES_DSN
// and creates the backing table and trigger.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("SIGNALZ_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SIGNALZ_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	schema := `
		CREATE TABLE IF NOT EXISTS signal_state (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		);
		CREATE OR REPLACE FUNCTION notify_state_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('state_changed', NEW.key);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;
		DROP TRIGGER IF EXISTS state_change_trigger ON signal_state;
		CREATE TRIGGER state_change_trigger
			AFTER INSERT OR UPDATE ON signal_state
			FOR EACH ROW EXECUTE FUNCTION notify_state_change();
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return pool
}

func TestSource_FeedsSignal(t *testing.T) {
	pool := setupPostgres(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key := t.Name()
	upsert := `INSERT INTO signal_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM signal_state WHERE key = $1", key)
	})
	if _, err := pool.Exec(ctx, upsert, key, []byte(`{"user": {"name": "ada"}}`)); err != nil {
		t.Fatalf("failed to seed row: %v", err)
	}

	sig, err := signalz.New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	feed := signalz.NewFeed(New(pool, "state_changed", key), sig).Debounce(10 * time.Millisecond)
	if err := feed.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := sig.Get("user.name"); got != "ada" {
		t.Fatalf("expected ada, got %v", got)
	}

	if _, err := pool.Exec(ctx, upsert, key, []byte(`{"user": {"name": "grace"}}`)); err != nil {
		t.Fatalf("failed to update row: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sig.Get("user.name") == "grace" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("expected grace, got %v", sig.Get("user.name"))
}
