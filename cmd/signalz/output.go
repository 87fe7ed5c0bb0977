package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// printer writes values in the configured output format.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

// print writes v on its own.
func (p *printer) print(v any) error {
	data, err := p.encode(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.w.Write(data)
	return err
}

// printNamed writes v keyed by name, one document per call.
func (p *printer) printNamed(name string, v any) error {
	return p.print(map[string]any{name: v})
}

func (p *printer) encode(v any) ([]byte, error) {
	switch p.format {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return append([]byte("---\n"), data...), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
}
