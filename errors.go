package taskpool

import (
	"errors"
	"fmt"
)

// Namespace prefixes every sentinel error this package defines.
const Namespace = "taskpool"

// Stable, user-visible error messages. Callers may match on
// these with errors.Is; the timeout message additionally embeds the
// configured duration and is therefore built by newTimeoutError rather than
// being a sentinel.
var (
	ErrPoolClosing = errors.New(Namespace + ": pool is shutting down")
	ErrTaskAborted = errors.New(Namespace + ": task aborted")

	// ErrWorkerError is the fallback used when a transport reports a
	// failure with no usable message.
	ErrWorkerError = errors.New(Namespace + ": worker error")

	// ErrQueueFull is returned when the overflow queue is at capacity at
	// admission time. The queue never drops a task silently: it either
	// holds it or rejects it with this error.
	ErrQueueFull = errors.New(Namespace + ": queue is full")
)

func newTimeoutError(ms int64) error {
	return fmt.Errorf(Namespace+": task timed out after %dms", ms)
}
