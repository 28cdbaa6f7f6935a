package transport

import (
	"sync"

	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/scan"
)

// Inprocess is a pair of Go channels standing in for the same-context
// message port (the direct analogue of a same-process worker thread's
// port): no bytes cross a real boundary, frames are handed over by
// reference. It is the first of the two supported transport shapes, and
// is what the in-package tests and same-binary workers use.
type Inprocess struct {
	out      chan frame.Frame
	in       chan frame.Frame
	closeMu  sync.Mutex
	closed   bool
	closedCh chan struct{}
}

// NewInprocessPair returns two connected Ports: messages sent on one arrive
// on the other.
func NewInprocessPair(buffer int) (pool Port, worker Port) {
	a := make(chan frame.Frame, buffer)
	b := make(chan frame.Frame, buffer)
	closedCh := make(chan struct{})
	poolSide := &Inprocess{out: a, in: b, closedCh: closedCh}
	workerSide := &Inprocess{out: b, in: a, closedCh: closedCh}
	return poolSide, workerSide
}

// Send hands f over by reference: no bytes cross a real boundary, so the
// transferables it carries genuinely do move with it, not merely get
// acknowledged. Each is invalidated on the caller side once f is queued.
func (p *Inprocess) Send(f frame.Frame, transferables ...scan.Transferable) error {
	p.closeMu.Lock()
	closed := p.closed
	p.closeMu.Unlock()
	if closed {
		return errClosed
	}
	select {
	case p.out <- f:
		for _, t := range transferables {
			t.Transfer()
		}
		return nil
	case <-p.closedCh:
		return errClosed
	}
}

func (p *Inprocess) Recv() (frame.Frame, bool) {
	select {
	case f, ok := <-p.in:
		return f, ok
	case <-p.closedCh:
		return frame.Frame{}, false
	}
}

// Close marks the pair closed. Either side may call it; it is idempotent.
func (p *Inprocess) Close() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.closedCh)
	return nil
}
