package signalz

import "reflect"

// Equal reports whether next should be treated as unchanged from prev.
// A binding only re-renders when its Equal returns false.
type Equal func(next, prev any) bool

// Identical is the default comparator. It mirrors reference equality:
// maps, slices, pointers and channels are equal only when they share the
// same underlying storage, everything else is compared with ==.
// Values of different dynamic types are never identical. Non-nil funcs are
// never identical, because Go cannot tell two closures apart.
func Identical(next, prev any) bool {
	if next == nil || prev == nil {
		return next == nil && prev == nil
	}

	nv, pv := reflect.ValueOf(next), reflect.ValueOf(prev)
	if nv.Type() != pv.Type() {
		return false
	}

	switch nv.Kind() {
	case reflect.Func:
		return nv.IsNil() && pv.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return nv.Pointer() == pv.Pointer()
	case reflect.Slice:
		return nv.Pointer() == pv.Pointer() && nv.Len() == pv.Len()
	}

	if nv.Comparable() {
		return next == prev
	}
	// Structs or arrays holding maps or slices cannot use ==.
	return reflect.DeepEqual(next, prev)
}

// DeepEqual compares values structurally with reflect.DeepEqual. Use it when
// updaters build fresh containers holding the same contents and those
// rebuilds should not re-render.
func DeepEqual(next, prev any) bool {
	return reflect.DeepEqual(next, prev)
}

// resolveEqual returns the first non-nil comparator, falling back to
// Identical.
func resolveEqual(fns ...Equal) Equal {
	for _, fn := range fns {
		if fn != nil {
			return fn
		}
	}
	return Identical
}
