package signalz

import (
	"errors"
	"testing"
)

func TestUse_PassesSignalThrough(t *testing.T) {
	sig := mustNew(t, 1)

	got, err := Use(sig, WithName("ignored"))
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if got != sig {
		t.Error("expected the same Signal back")
	}
	if got.Name() != "" {
		t.Error("expected options to be ignored for an existing Signal")
	}
}

func TestUse_Config(t *testing.T) {
	cfg := Config{
		Initial: map[string]any{"n": 1},
		Options: []Option{WithSelectors(SelectorDef{Name: "n", Path: "n"})},
	}

	sig, err := Use(cfg, WithName("from-config"))
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if sig.Get("n") != 1 {
		t.Errorf("expected initial state from config, got %v", sig.Peek())
	}
	if _, ok := sig.Selector("n"); !ok {
		t.Error("expected selector from config options")
	}
	if sig.Name() != "from-config" {
		t.Errorf("expected extra options applied, got %q", sig.Name())
	}

	ptr, err := Use(&cfg)
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if ptr.Get("n") != 1 {
		t.Errorf("expected *Config to behave like Config, got %v", ptr.Peek())
	}
}

func TestUse_PlainValue(t *testing.T) {
	sig, err := Use("hello")
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if sig.Peek() != "hello" {
		t.Errorf("expected hello, got %v", sig.Peek())
	}
}

func TestUse_PropagatesErrors(t *testing.T) {
	_, err := Use(Config{Options: []Option{WithSelectors(SelectorDef{Name: "value"})}})
	if !errors.Is(err, ErrReservedName) {
		t.Errorf("expected ErrReservedName, got %v", err)
	}
}
