// Package taskpool multiplexes path-addressed calls onto a bounded set of
// worker processes reachable over a transport.Port.
//
// Construction
//   - New(factory, opts ...Option): builds a Pool bound to a WorkerFactory.
//     When IdleTimeout is zero (the default) the pool pre-warms to Limit
//     workers immediately; otherwise workers are created lazily as calls
//     are admitted.
//
// Calling
//   - Pool.Call(ctx, path, args, opts ...CallOption) submits one call and
//     returns a TaskHandle that settles once the worker replies, the call
//     times out, or ctx is cancelled.
//   - Pool.Root().With(name)...Call(ctx, args...) builds the same call
//     through a chainable Path, the statically-typed stand-in for a
//     dynamic proxy surface.
//
// Long-lived calls
//   - A worker action may call Context.Retain to keep its task alive past
//     a normal return, streaming events via Context.Dispatch. The caller
//     ends it with TaskHandle.Release.
//
// Lifecycle
//   - Pool.Stats() reports current occupancy.
//   - Pool.Shutdown() stops admission, fails queued calls, lets executing
//     and retained calls finish, then terminates every worker.
//   - Pool.Events() surfaces operational occurrences (spawn, crash,
//     timeout, idle eviction, abort) for logging or metrics, independent
//     of any single call's settlement.
package taskpool
