// Package action implements the worker-side half of the protocol:
// flattening a nested action map into a path→function table and
// dispatching inbound request/release frames against it.
package action

// Fn is an action registered on the worker side, addressable by a dotted
// path. It receives its context (dispatch/retain/release) and
// the call's argument list, and returns either a result or an error.
//
// Cancellation is preemptive, not cooperative: the pool
// terminates the worker process outright rather than asking a running
// action to stop, so Fn intentionally does not take a context.Context.
// Long-running actions that need a clean release path must use
// Context.Retain with a cleanup hook.
type Fn func(ctx *Context, args []any) (any, error)

// Tree is a nested mapping of named actions, arbitrary depth. A value is
// either an Fn or another Tree; any other value is ignored by Flatten.
type Tree map[string]any

// Flatten walks tree and returns a path→Fn table of every function leaf,
// joined by ".". Non-function, non-Tree values are ignored. When two
// branches produce the same path, the one written last wins; since a Tree
// is a Go map, that order follows map iteration and is not fixed.
func Flatten(tree Tree) map[string]Fn {
	out := make(map[string]Fn)
	flattenInto(tree, "", out)
	return out
}

func flattenInto(tree Tree, prefix string, out map[string]Fn) {
	for name, v := range tree {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		switch leaf := v.(type) {
		case Fn:
			out[path] = leaf
		case func(*Context, []any) (any, error):
			out[path] = Fn(leaf)
		case Tree:
			flattenInto(leaf, path, out)
		case map[string]any:
			flattenInto(Tree(leaf), path, out)
		default:
			// non-function, non-mapping leaves are ignored
		}
	}
}
