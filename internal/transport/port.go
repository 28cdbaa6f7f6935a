// Package transport provides the uniform Port abstraction the scheduler and
// the worker-side dispatcher talk through, plus two
// implementations of it: an in-process adapter (a pair of Go channels) and
// a WebSocket adapter for a worker running as a separate process.
package transport

import (
	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/scan"
)

// Frame is re-exported for convenience within this package's call sites.
type Frame = frame.Frame

// Port is the uniform interface over the two supported transport shapes.
// Errors surfaced by the underlying transport are normalised to a plain
// message.
type Port interface {
	// Send delivers f to the peer. transferables are the handles scan.Scan
	// found in f's payload; once f has actually been handed off, Send calls
	// Transfer on each of them, so the caller-side value is invalidated
	// regardless of whether the underlying transport can move the
	// referenced resource itself.
	Send(f frame.Frame, transferables ...scan.Transferable) error

	// Recv blocks for the next frame from the peer. ok is false once the
	// port is closed and no more frames will arrive.
	Recv() (f frame.Frame, ok bool)

	// Close releases the underlying transport. It is safe to call more
	// than once.
	Close() error
}
