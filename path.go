package signalz

import (
	"reflect"
	"strconv"
	"strings"
)

// PathSeparator delimits the segments of a selector path.
const PathSeparator = "."

type targetKind uint8

const (
	targetRoot targetKind = iota
	targetPath
	targetFunc
)

// Target specifies which slice of the state a read observes.
// The zero value is Root.
type Target struct {
	kind targetKind
	path string
	fn   func(any) any
}

// Root targets the whole state.
var Root = Target{}

// Path targets the value at a dot-delimited path such as "a.b.c".
func Path(path string) Target {
	return Target{kind: targetPath, path: path}
}

// Func targets whatever fn derives from the whole state.
// A nil fn is equivalent to Root. fn runs while the Signal is locked when a
// binding is created and must not call back into it.
func Func(fn func(state any) any) Target {
	if fn == nil {
		return Root
	}
	return Target{kind: targetFunc, fn: fn}
}

// Resolve applies the target to state.
func (t Target) Resolve(state any) any {
	switch t.kind {
	case targetPath:
		return lookup(state, t.path)
	case targetFunc:
		return t.fn(state)
	default:
		return state
	}
}

// String describes the target for events and debugging.
func (t Target) String() string {
	switch t.kind {
	case targetPath:
		return t.path
	case targetFunc:
		return "<func>"
	default:
		return ReservedName
	}
}

// lookup walks path through state and returns nil at the first segment
// that cannot be followed.
func lookup(state any, path string) any {
	current := state
	for _, seg := range strings.Split(path, PathSeparator) {
		next, ok := child(current, seg)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// child returns the member seg of v. Maps keyed by strings, slices and
// arrays indexed by a decimal segment, and exported struct fields can be
// followed; pointers and interfaces are dereferenced first.
func child(v any, seg string) (any, bool) {
	switch c := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		val, ok := c[seg]
		return val, ok
	case []any:
		i, ok := index(seg, len(c))
		if !ok {
			return nil, false
		}
		return c[i], true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		i, ok := index(seg, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		field, ok := rv.Type().FieldByName(seg)
		if !ok || !field.IsExported() {
			return nil, false
		}
		return rv.FieldByIndex(field.Index).Interface(), true
	}
	return nil, false
}

// index parses seg as a position inside a sequence of length n.
func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// setPath returns a copy of root with the value at path replaced by
// fn(current value at path). Containers along the path are shallow-copied
// and untouched branches are shared with root, so bindings on any ancestor
// of the written path see a new identity while siblings keep theirs.
//
// Typed containers (string-keyed maps, structs, slices, arrays and pointers
// to them) are copied with their type kept. A write that cannot be stored
// is a silent miss and leaves that container unchanged: a non-numeric
// index, an index more than one past the end of a slice or at or past the
// end of an array, an unknown or unexported struct field, a map with
// non-string keys, or a value not assignable to the element type.
// Intermediates that are missing, nil or scalar are replaced with new maps.
func setPath(root any, path string, fn func(any) any) any {
	return assign(root, strings.Split(path, PathSeparator), fn)
}

func assign(node any, segs []string, fn func(any) any) any {
	if len(segs) == 0 {
		return fn(node)
	}
	seg, rest := segs[0], segs[1:]

	switch c := node.(type) {
	case []any:
		i, ok := growIndex(seg, len(c))
		if !ok {
			return c
		}
		out := make([]any, max(len(c), i+1))
		copy(out, c)
		out[i] = assign(out[i], rest, fn)
		return out
	case map[string]any:
		out := make(map[string]any, len(c)+1)
		for k, v := range c {
			out[k] = v
		}
		out[seg] = assign(c[seg], rest, fn)
		return out
	}

	if out, ok := assignTyped(reflect.ValueOf(node), seg, rest, fn); ok {
		return out.Interface()
	}
	return map[string]any{seg: assign(nil, rest, fn)}
}

// growIndex parses seg as a slice position. Positions up to and including
// n are accepted so that a write can append exactly one element.
func growIndex(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i > n {
		return 0, false
	}
	return i, true
}

// assignTyped writes through a typed container held in rv. It reports false
// when rv is not a container, so the caller replaces it with a new map.
func assignTyped(rv reflect.Value, seg string, rest []string, fn func(any) any) (reflect.Value, bool) {
	if !rv.IsValid() {
		return rv, false
	}
	t := rv.Type()

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return rv, false
		}
		elem, ok := assignTyped(rv.Elem(), seg, rest, fn)
		if !ok {
			return rv, false
		}
		if elem.Type() != t.Elem() {
			return rv, true
		}
		out := reflect.New(t.Elem())
		out.Elem().Set(elem)
		return out, true

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return rv, true
		}
		key := reflect.ValueOf(seg).Convert(t.Key())
		var cur any
		if v := rv.MapIndex(key); v.IsValid() {
			cur = v.Interface()
		}
		val, ok := valueFor(assign(cur, rest, fn), t.Elem())
		if !ok {
			return rv, true
		}
		out := reflect.MakeMapWithSize(t, rv.Len()+1)
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		out.SetMapIndex(key, val)
		return out, true

	case reflect.Struct:
		field, ok := t.FieldByName(seg)
		if !ok || !field.IsExported() {
			return rv, true
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		f, err := out.FieldByIndexErr(field.Index)
		if err != nil {
			return rv, true
		}
		val, ok := valueFor(assign(f.Interface(), rest, fn), field.Type)
		if !ok {
			return rv, true
		}
		f.Set(val)
		return out, true

	case reflect.Slice:
		i, ok := growIndex(seg, rv.Len())
		if !ok {
			return rv, true
		}
		var cur any
		if i < rv.Len() {
			cur = rv.Index(i).Interface()
		}
		val, ok := valueFor(assign(cur, rest, fn), t.Elem())
		if !ok {
			return rv, true
		}
		n := max(rv.Len(), i+1)
		out := reflect.MakeSlice(t, n, n)
		reflect.Copy(out, rv)
		out.Index(i).Set(val)
		return out, true

	case reflect.Array:
		i, ok := index(seg, rv.Len())
		if !ok {
			return rv, true
		}
		val, ok := valueFor(assign(rv.Index(i).Interface(), rest, fn), t.Elem())
		if !ok {
			return rv, true
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		out.Index(i).Set(val)
		return out, true
	}
	return rv, false
}

// valueFor converts v for storage in a slot of type t. Only values of the
// same kind are converted, so an int is never turned into a string.
func valueFor(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}
