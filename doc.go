// Package signalz provides a reactive state container whose observers
// re-render only when the slice of state they read has changed.
//
// # Signal
//
// A Signal owns a state value (usually a map[string]any tree), an ordered
// list of observers and a default comparator. Every write replaces the
// state and then runs one synchronous pass over all observers in
// registration order:
//
//	Write → Replace state → Observer 1 → Observer 2 → ...
//
// Writes are never batched or coalesced. A panic raised by an observer
// propagates out of the write and stops the pass.
//
// # Bindings
//
// A binding is one observer plus one last-seen value. It re-evaluates its
// target after every write and calls its render func only when the
// comparator reports a difference:
//
//	b := sig.GetValue(signalz.Path("user.name"), nil, func(v any) {
//	    fmt.Println("name is now", v)
//	})
//	defer b.Close()
//
// Targets are Root (the whole state), Path (a dot-delimited chain) or Func
// (derived from the whole state). A path with a missing segment resolves to
// nil; it never panics.
//
// Comparator precedence is most specific first: the comparator passed to
// GetValue, then the selector's own, then WithEqual, then Identical.
//
// # Selectors
//
// Selectors are named paths with their own accessor:
//
//	sig, _ := signalz.New(
//	    map[string]any{"count": 0},
//	    signalz.WithSelectors(signalz.SelectorDef{Name: "count", Path: "count"}),
//	)
//	sig.SetSelector("count", 5)
//	sig.SetSelector("count", func(c any) any { return c.(int) + 1 })
//
// The name "value" is reserved for the whole-state accessor; defining or
// deleting it fails with ErrReservedName.
//
// Selector writes copy every container on the path and share the rest, so
// bindings on ancestors of the written path see a new identity while
// untouched branches keep theirs.
//
// # Feeds
//
// A Feed writes documents from a Source into a Signal:
//
//	feed := signalz.NewFeed(signalz.NewFileSource("state.yaml"), sig)
//	if err := feed.Start(ctx); err != nil {
//	    log.Printf("initial document failed: %v", err)
//	}
//
// Feeds debounce rapid changes, keep the previous state when a document
// fails to decode, and track their own Loading, Healthy, Degraded and
// Empty states.
//
// # Observability
//
// Signals and Feeds emit capitan events (see signals.go) and report to an
// optional MetricsProvider. pkg/prometheus provides a Prometheus
// implementation.
package signalz
