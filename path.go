package taskpool

import (
	"context"
	"strings"
)

// Path accumulates a dotted action path through chained With calls and
// submits it with Call. It is the statically-typed stand-in for the
// dynamic proxy surface: Go has no property-access interception, so the
// path is built explicitly instead of through member access on a façade.
//
// A Path is immutable; With returns a new value, leaving the receiver
// untouched, so a partial path can be reused as a prefix for several calls.
type Path struct {
	pool     *Pool
	segments []string
}

// Root returns the empty path rooted at pool.
func (p *Pool) Root() Path {
	return Path{pool: p}
}

// With extends the path with another segment.
func (p Path) With(name string) Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	segments = append(segments, name)
	return Path{pool: p.pool, segments: segments}
}

// String renders the accumulated dotted path.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// Call submits the accumulated path with args: the returned handle is for
// this single invocation, and p itself is unchanged so it can be reused as a
// prefix.
func (p Path) Call(ctx context.Context, args ...any) *TaskHandle {
	return p.pool.Call(ctx, p.String(), args)
}
