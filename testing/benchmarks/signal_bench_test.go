package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/zoobzio/signalz"
)

func newState(n int) map[string]any {
	users := make(map[string]any, n)
	for i := range n {
		users[fmt.Sprintf("u%d", i)] = map[string]any{"name": fmt.Sprintf("user %d", i), "visits": 0}
	}
	return map[string]any{"users": users}
}

func BenchmarkSignal_SetValue(b *testing.B) {
	sig, err := signalz.New(0)
	if err != nil {
		b.Fatal(err)
	}
	sig.Subscribe(func() {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sig.SetValue(i)
	}
}

func BenchmarkSignal_SelectorWrite(b *testing.B) {
	for _, bindings := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("bindings=%d", bindings), func(b *testing.B) {
			sig, err := signalz.New(newState(bindings), signalz.WithSelectors(
				signalz.SelectorDef{Name: "visits", Path: "users.u0.visits"},
			))
			if err != nil {
				b.Fatal(err)
			}
			for i := range bindings {
				sig.GetValue(signalz.Path(fmt.Sprintf("users.u%d.name", i)), nil, func(any) {})
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := sig.SetSelector("visits", i); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPath_Resolve(b *testing.B) {
	state := newState(100)
	target := signalz.Path("users.u42.name")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = target.Resolve(state)
	}
}

func BenchmarkFeed_Process(b *testing.B) {
	ch := make(chan []byte, b.N+1)
	ch <- []byte(`{"value": 0, "name": "initial"}`)
	for i := 1; i <= b.N; i++ {
		ch <- []byte(fmt.Sprintf(`{"value": %d, "name": "test"}`, i))
	}

	sig, err := signalz.New(nil)
	if err != nil {
		b.Fatal(err)
	}
	feed := signalz.NewFeed(signalz.NewSyncChannelSource(ch), sig).
		Codec(signalz.JSONCodec{}).
		SyncMode()

	ctx := context.Background()
	if err := feed.Start(ctx); err != nil {
		b.Fatalf("Start() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		feed.Process(ctx)
	}
}
