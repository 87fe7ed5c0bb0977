package signalz

import (
	"reflect"
	"testing"
)

func TestJSONCodec_Decode(t *testing.T) {
	v, err := JSONCodec{}.Decode([]byte(`{"a": {"b": [1, "x"]}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := map[string]any{"a": map[string]any{"b": []any{float64(1), "x"}}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("expected %v, got %v", want, v)
	}
}

func TestJSONCodec_Invalid(t *testing.T) {
	if _, err := (JSONCodec{}).Decode([]byte("port: 8080")); err == nil {
		t.Error("expected error for non-JSON input")
	}
}

func TestYAMLCodec_Decode(t *testing.T) {
	v, err := YAMLCodec{}.Decode([]byte("a:\n  b:\n    - 1\n    - x\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := Path("a.b.1").Resolve(v); got != "x" {
		t.Errorf("expected a.b.1 = x, got %v", got)
	}
	if got := Path("a.b.0").Resolve(v); got != 1 {
		t.Errorf("expected a.b.0 = 1, got %v", got)
	}
}

func TestYAMLCodec_NonStringKeys(t *testing.T) {
	v, err := YAMLCodec{}.Decode([]byte("codes:\n  200: ok\n  404: missing\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := Path("codes.404").Resolve(v); got != "missing" {
		t.Errorf("expected codes.404 = missing, got %v", got)
	}
}

func TestYAMLCodec_Invalid(t *testing.T) {
	if _, err := (YAMLCodec{}).Decode([]byte("not: valid: yaml: {{{}}")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestAutoCodec_Detects(t *testing.T) {
	fromJSON, err := AutoCodec{}.Decode([]byte(`  {"port": 8080}`))
	if err != nil {
		t.Fatalf("Decode(json) error = %v", err)
	}
	fromYAML, err := AutoCodec{}.Decode([]byte("port: 8080"))
	if err != nil {
		t.Fatalf("Decode(yaml) error = %v", err)
	}

	if Path("port").Resolve(fromJSON) != float64(8080) {
		t.Errorf("expected JSON number, got %v", fromJSON)
	}
	if Path("port").Resolve(fromYAML) != 8080 {
		t.Errorf("expected YAML int, got %v", fromYAML)
	}
}

func TestCodec_ContentTypes(t *testing.T) {
	if (JSONCodec{}).ContentType() != "application/json" {
		t.Error("unexpected JSON content type")
	}
	if (YAMLCodec{}).ContentType() != "application/x-yaml" {
		t.Error("unexpected YAML content type")
	}
	if (AutoCodec{}).ContentType() != "application/octet-stream" {
		t.Error("unexpected auto content type")
	}
}
