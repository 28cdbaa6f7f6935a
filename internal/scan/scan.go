// Package scan walks an arbitrary argument or result value and collects the
// transferable handles found in it, so the transport layer can hand them off
// to a worker instead of copying them.
package scan

import "reflect"

// Transferable is implemented by values whose ownership should move across
// the transport rather than being copied: a file descriptor, a shared-memory
// segment, anything that must become unusable on the caller side once handed
// to a worker. Implementations must be safe to detect on platforms where the
// underlying resource may not exist; Scan only relies on the interface,
// never on a concrete type assertion.
type Transferable interface {
	// Transfer marks the value as moved to the peer. A transport.Port calls
	// this on every transferable found in a frame once that frame has
	// actually been handed off; the caller must not use the value again
	// afterward.
	Transfer()
}

// maxDepth bounds recursion defensively. Inputs are assumed acyclic and
// structured-cloneable; this is a backstop, not a correctness guarantee.
const maxDepth = 64

// Scan walks v depth-first and returns, in traversal order, every
// Transferable reachable from it, so a transport.Port can invalidate each one
// on the caller side once the frame carrying it has been sent. Primitives,
// nil, and absent values are skipped. A value recognised as Transferable is
// collected but not descended into.
func Scan(v any) []Transferable {
	if v == nil {
		return nil
	}
	var out []Transferable
	walk(reflect.ValueOf(v), 0, &out)
	return out
}

func walk(v reflect.Value, depth int, out *[]Transferable) {
	if depth > maxDepth || !v.IsValid() {
		return
	}

	if v.CanInterface() {
		if t, ok := v.Interface().(Transferable); ok {
			*out = append(*out, t)
			return
		}
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return
		}
		walk(v.Elem(), depth+1, out)

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return
		}
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), depth+1, out)
		}

	case reflect.Map:
		if v.IsNil() {
			return
		}
		for _, k := range v.MapKeys() {
			walk(v.MapIndex(k), depth+1, out)
		}

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue // unexported, not enumerable from outside the package
			}
			walk(v.Field(i), depth+1, out)
		}

	default:
		// primitives: nothing to collect
	}
}
