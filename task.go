package taskpool

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// taskRecord is the scheduler's private bookkeeping for one admitted call. It
// is never exposed to callers directly; TaskHandle is the public face.
type taskRecord struct {
	id      uuid.UUID
	path    string
	args    []any
	handle  *TaskHandle

	ctx          context.Context
	timeout      time.Duration
	timeoutTimer *time.Timer

	aborted  bool
	retained bool

	worker *workerRecord
}

// CallOption customizes a single invocation (schedule options in the data
// model: an external abort signal and a timeout).
type CallOption func(*taskRecord)

// WithTimeout fails the call with a timeout error if it has not settled
// within d of being dispatched to a worker. Time spent queued does not
// count, and a retained acknowledgement from the worker cancels the
// timeout. Zero (the default) disables the timeout.
func WithTimeout(d time.Duration) CallOption {
	return func(t *taskRecord) { t.timeout = d }
}

// WithAbort ties the call's cancellation to ctx: if ctx is already done at
// admission time, or is cancelled later, the call settles as aborted.
// Without WithAbort, the ctx passed to Call plays this role. A nil ctx is
// treated as context.Background() and never fires.
func WithAbort(ctx context.Context) CallOption {
	return func(t *taskRecord) {
		if ctx == nil {
			ctx = context.Background()
		}
		t.ctx = ctx
	}
}
