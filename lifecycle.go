package taskpool

import "github.com/ygrebnov/taskpool/internal/frame"

// Shutdown is the completion handle returned by Pool.Shutdown: it settles
// once every executing and retained task has finished and every worker has
// been terminated.
type Shutdown struct {
	done chan struct{}
}

// Done returns a channel closed once shutdown has completed.
func (s *Shutdown) Done() <-chan struct{} { return s.done }

// Shutdown stops admitting new tasks, fails every queued task with
// ErrPoolClosing, lets retained and currently-executing tasks finish
// naturally, and terminates every worker once they have. Each call returns
// its own handle; every handle completes when the shutdown does, or at once
// if it has already completed.
func (p *Pool) Shutdown() *Shutdown {
	s := &Shutdown{done: make(chan struct{})}
	p.submit(func() { p.beginShutdown(s) })
	return s
}

func (p *Pool) beginShutdown(s *Shutdown) {
	if p.shuttingDown {
		// A second call while a shutdown is already underway folds into
		// the drain sink already registered; signal this one too. With no
		// sink left, the shutdown has already completed.
		if p.drainSink == nil {
			close(s.done)
			return
		}
		prior := p.drainSink
		p.drainSink = func() {
			if prior != nil {
				prior()
			}
			close(s.done)
		}
		return
	}

	p.shuttingDown = true

	for _, w := range p.available {
		w.stopIdleTimer()
	}
	p.available = nil

	if len(p.queue) > 0 {
		p.cfg.Provider.UpDownCounter("taskpool.queued").Add(-int64(len(p.queue)))
	}
	for _, t := range p.queue {
		delete(p.tasks, t.id)
		t.handle.settle(nil, newTaskTaggedError(ErrPoolClosing, t.id, t.path))
	}
	p.queue = nil

	for w, t := range p.pending {
		if t.retained {
			_ = w.port.Send(frame.Frame{UUID: t.id, ReleaseRequest: true})
		}
	}

	if len(p.pending) == 0 {
		p.terminateAllWorkers()
		p.events.close()
		close(s.done)
		return
	}

	p.drainSink = func() {
		p.events.close()
		close(s.done)
	}
}

// maybeFireDrain completes a registered shutdown once every pending task has
// settled. It is a no-op unless a shutdown is in progress.
func (p *Pool) maybeFireDrain() {
	if !p.shuttingDown || p.drainSink == nil || len(p.pending) > 0 {
		return
	}
	sink := p.drainSink
	p.drainSink = nil
	p.terminateAllWorkers()
	sink()
}

func (p *Pool) terminateAllWorkers() {
	for w := range p.workers {
		p.terminateWorker(w)
	}
	p.workers = make(map[*workerRecord]struct{})
	p.pending = make(map[*workerRecord]*taskRecord)
	p.available = nil
}
