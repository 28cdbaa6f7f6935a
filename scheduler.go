package taskpool

import (
	"time"

	"github.com/ygrebnov/taskpool/internal/frame"
)

// handleReply routes one inbound frame from w's port against its currently
// pending task. A frame whose uuid does not correlate to a known task is
// silently ignored.
func (p *Pool) handleReply(w *workerRecord, f frame.Frame) {
	t, ok := p.tasks[f.UUID]
	if !ok {
		return
	}

	switch {
	case frame.IsEvent(f):
		t.handle.dispatchEvent(f.Event, f.Data)

	case f.Retained:
		p.handleRetainedAck(w, t)

	case frame.IsFailure(f):
		p.settleReply(w, t, nil, workerFailure(t, f.Err))

	default:
		p.settleReply(w, t, f.Result, nil)
	}
}

func workerFailure(t *taskRecord, e *frame.Error) error {
	return newTaskTaggedError(&workerReportedError{msg: frame.ErrorMessage(e)}, t.id, t.path)
}

// handleRetainedAck marks the task retained: its timeout is cancelled
// (a retained task lives until explicitly released, not until a deadline),
// and its worker stays bound outside the available list until release or
// shutdown settles it.
func (p *Pool) handleRetainedAck(w *workerRecord, t *taskRecord) {
	stopTimer(t)
	t.retained = true
	t.handle.markRetained(func() {
		p.submit(func() { p.sendRelease(t) })
	})
}

func (p *Pool) sendRelease(t *taskRecord) {
	if t.worker == nil {
		return
	}
	_ = t.worker.port.Send(frame.Frame{UUID: t.id, ReleaseRequest: true})
}

// settleReply handles the common tail of both success and failure replies:
// remove bookkeeping, settle the handle, return the worker, redrive.
func (p *Pool) settleReply(w *workerRecord, t *taskRecord, result any, err error) {
	stopTimer(t)
	delete(p.pending, w)
	delete(p.tasks, t.id)
	p.completed++
	p.cfg.Provider.Counter("taskpool.completed").Add(1)

	t.handle.settle(result, err)
	p.returnWorker(w)
	p.maybeFireDrain()
	p.redrive()
}

func (p *Pool) returnWorker(w *workerRecord) {
	if w.status == workerTerminated {
		return
	}
	w.status = workerAvailable
	p.available = append(p.available, w)
	p.armIdleTimer(w)
}

func (p *Pool) armIdleTimer(w *workerRecord) {
	if p.cfg.IdleTimeout <= 0 {
		return
	}
	w.idleTimer = time.AfterFunc(p.cfg.IdleTimeout, func() {
		p.submit(func() { p.handleIdleExpiry(w) })
	})
}

func (p *Pool) handleIdleExpiry(w *workerRecord) {
	if w.status != workerAvailable {
		return // already reused or terminated between timer fire and this closure running
	}
	p.removeFromAvailable(w)
	p.terminateWorker(w)
	p.emitEvent(EventWorkerIdleEvicted, nil)
}

func (p *Pool) removeFromAvailable(w *workerRecord) {
	for i, cand := range p.available {
		if cand == w {
			p.available = append(p.available[:i], p.available[i+1:]...)
			return
		}
	}
}

// terminateWorker closes the port and drops every trace of w. It never
// settles a task: callers are responsible for that before or after, as
// appropriate to the reason for termination.
func (p *Pool) terminateWorker(w *workerRecord) {
	if w.status == workerTerminated {
		return
	}
	w.stopIdleTimer()
	w.status = workerTerminated
	delete(p.workers, w)
	delete(p.pending, w)
	p.cfg.Provider.UpDownCounter("taskpool.workers").Add(-1)
	_ = w.port.Close()
}

// handleCrash fires when a worker's transport closes or errors while it may
// have been holding a task. No replacement is created eagerly; the next
// admission lazily creates one if capacity allows.
func (p *Pool) handleCrash(w *workerRecord) {
	if w.status == workerTerminated {
		return // already torn down deliberately (e.g. by shutdown)
	}
	t, hadTask := p.pending[w]
	p.removeFromAvailable(w)
	p.terminateWorker(w)

	if hadTask {
		delete(p.tasks, t.id)
		t.handle.settle(nil, newTaskTaggedError(ErrWorkerError, t.id, t.path))
	}
	p.emitEvent(EventWorkerCrashed, ErrWorkerError)

	p.maybeFireDrain()
	p.redrive()
}

// handleTimeout fires when a task's deadline elapses while it is still
// executing. Unlike a crash, a replacement worker is created immediately:
// the caller's timeout budget implies the slot is needed promptly.
func (p *Pool) handleTimeout(w *workerRecord, t *taskRecord) {
	cur, stillPending := p.pending[w]
	if !stillPending || cur != t {
		return // task already settled through some other path
	}

	delete(p.pending, w)
	delete(p.tasks, t.id)
	p.terminateWorker(w)

	ms := t.timeout.Milliseconds()
	timeoutErr := newTimeoutError(ms)
	t.handle.settle(nil, newTaskTaggedError(timeoutErr, t.id, t.path))
	p.emitEvent(EventWorkerTimedOut, timeoutErr)

	if replacement, err := p.spawnWorker(); err == nil {
		p.available = append(p.available, replacement)
	}

	p.maybeFireDrain()
	p.redrive()
}

// handleAbort fires when a task's bound context is done. If the task is
// still queued it is removed and settled directly; if it is executing, its
// worker is terminated and replaced, matching cancellation's "preemptive at
// execution" semantics.
func (p *Pool) handleAbort(t *taskRecord) {
	if _, stillTracked := p.tasks[t.id]; !stillTracked {
		return // already settled
	}
	t.aborted = true

	if t.worker == nil {
		p.removeFromQueue(t)
		delete(p.tasks, t.id)
		t.handle.settle(nil, newTaskTaggedError(ErrTaskAborted, t.id, t.path))
		return
	}

	w := t.worker
	stopTimer(t)
	delete(p.pending, w)
	delete(p.tasks, t.id)
	p.terminateWorker(w)
	t.handle.settle(nil, newTaskTaggedError(ErrTaskAborted, t.id, t.path))
	p.emitEvent(EventWorkerAborted, ErrTaskAborted)

	if replacement, err := p.spawnWorker(); err == nil {
		p.available = append(p.available, replacement)
	}

	p.maybeFireDrain()
	p.redrive()
}

func (p *Pool) removeFromQueue(t *taskRecord) {
	for i, cand := range p.queue {
		if cand == t {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			p.cfg.Provider.UpDownCounter("taskpool.queued").Add(-1)
			return
		}
	}
}

func stopTimer(t *taskRecord) {
	if t.timeoutTimer != nil {
		t.timeoutTimer.Stop()
		t.timeoutTimer = nil
	}
}

type workerReportedError struct{ msg string }

func (e *workerReportedError) Error() string { return e.msg }
