package signalz

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec turns raw source bytes into a state tree.
// Implement this interface to feed alternative formats like TOML or HCL.
type Codec interface {
	// Decode parses data into a state value. Objects must decode to
	// map[string]any and arrays to []any so that selector paths can walk them.
	Decode(data []byte) (any, error)

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec implements Codec using encoding/json.
type JSONCodec struct{}

// Decode parses JSON bytes.
func (JSONCodec) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("expected JSON: %w", err)
	}
	return v, nil
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Decode parses YAML bytes. Mappings with non-string keys are converted so
// that every object in the result is a map[string]any.
func (YAMLCodec) Decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// AutoCodec detects the format from content: a document whose first
// non-space byte is '{' or '[' is JSON, anything else is YAML.
type AutoCodec struct{}

// Decode parses data as JSON or YAML.
func (AutoCodec) Decode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSONCodec{}.Decode(data)
	}
	return YAMLCodec{}.Decode(data)
}

// ContentType reports that the format is detected per document.
func (AutoCodec) ContentType() string {
	return "application/octet-stream"
}

var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
	_ Codec = AutoCodec{}
)

// normalize rewrites map[any]any into map[string]any recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
