package taskpool

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/scan"
	"github.com/ygrebnov/taskpool/internal/transport"
)

// WorkerFactory creates one fresh transport connection to a new worker. The
// pool calls it lazily, at most up to Limit times concurrently alive, and
// never needs to know whether the resulting Port is backed by an in-process
// channel pair or a separate worker process over a websocket.
type WorkerFactory func() (transport.Port, error)

// Pool owns worker lifecycles, the pending-task map, the ready worker list,
// the overflow queue, idle timers, cancellation signals, timeouts, crash
// replacement, and graceful shutdown.
//
// Every field below is touched only from the single goroutine run by New;
// callers never read or write it directly. Public methods hand a closure to
// that goroutine over cmds and, where a result is needed, wait on a reply
// channel. This is the single-threaded cooperative model: no scheduler
// field is ever read or written across a goroutine boundary, so none of
// this state needs a mutex.
type Pool struct {
	factory WorkerFactory
	cfg     config

	cmds chan func()

	workers      map[*workerRecord]struct{}
	available    []*workerRecord // LIFO: last idle is first redispatched
	pending      map[*workerRecord]*taskRecord
	tasks        map[uuid.UUID]*taskRecord
	queue        []*taskRecord
	completed    uint64
	shuttingDown bool
	drainSink    func()

	events *eventForwarder
}

// New creates a pool bound to factory and starts its run loop. When
// IdleTimeout is zero the pool pre-warms to Limit workers immediately;
// otherwise workers are created lazily as tasks are admitted.
func New(factory WorkerFactory, opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		panic(err)
	}

	p := &Pool{
		factory: factory,
		cfg:     cfg,
		cmds:    make(chan func(), 64),
		workers: make(map[*workerRecord]struct{}),
		pending: make(map[*workerRecord]*taskRecord),
		tasks:   make(map[uuid.UUID]*taskRecord),
		events:  newEventForwarder(),
	}

	go p.run()

	if cfg.IdleTimeout == 0 {
		p.submit(p.prewarm)
	}

	return p
}

func (p *Pool) run() {
	for fn := range p.cmds {
		fn()
	}
}

// submit hands fn to the run loop. It never blocks on fn's own effects,
// only on cmds having room (buffered, so this is effectively non-blocking
// under normal load).
func (p *Pool) submit(fn func()) {
	p.cmds <- fn
}

func (p *Pool) prewarm() {
	for len(p.workers) < int(p.cfg.Limit) {
		w, err := p.spawnWorker()
		if err != nil {
			p.cfg.Logger.Warn().Err(err).Msg("taskpool: pre-warm worker creation failed")
			return
		}
		p.available = append(p.available, w)
	}
}

func (p *Pool) spawnWorker() (*workerRecord, error) {
	port, err := p.factory()
	if err != nil {
		return nil, err
	}
	w := newWorkerRecord(port)
	p.workers[w] = struct{}{}
	p.cfg.Provider.UpDownCounter("taskpool.workers").Add(1)
	p.emitEvent(EventWorkerSpawned, nil)
	go p.readLoop(w)
	return w, nil
}

// readLoop pumps frames off a worker's port and hands each one to the run
// loop as a closure, so frame handling always serializes with admission,
// timers, and every other scheduler operation.
func (p *Pool) readLoop(w *workerRecord) {
	for {
		f, ok := w.port.Recv()
		if !ok {
			p.submit(func() { p.handleCrash(w) })
			return
		}
		frameCopy := f
		p.submit(func() { p.handleReply(w, frameCopy) })
	}
}

// Call submits path with args for execution and returns a handle that
// settles once the call completes, fails, or is cancelled. The handle is
// returned before any worker has replied; it is already wired to receive
// events the action dispatches.
func (p *Pool) Call(ctx context.Context, path string, args []any, opts ...CallOption) *TaskHandle {
	if ctx == nil {
		ctx = context.Background()
	}
	t := &taskRecord{
		id:     uuid.New(),
		path:   path,
		args:   args,
		handle: newTaskHandle(),
		ctx:    ctx,
	}
	for _, opt := range opts {
		opt(t)
	}

	p.submit(func() { p.admit(t) })
	return t.handle
}

func (p *Pool) admit(t *taskRecord) {
	if p.shuttingDown {
		t.handle.settle(nil, newTaskTaggedError(ErrPoolClosing, t.id, t.path))
		return
	}
	if t.ctx.Err() != nil {
		t.handle.settle(nil, newTaskTaggedError(ErrTaskAborted, t.id, t.path))
		return
	}

	p.tasks[t.id] = t
	p.watchAbort(t)
	p.dispatchOrEnqueue(t)
}

// watchAbort arms a goroutine that fires at most once, forwarding ctx's
// cancellation back onto the run loop as an abort command.
func (p *Pool) watchAbort(t *taskRecord) {
	if t.ctx.Done() == nil {
		return
	}
	go func() {
		select {
		case <-t.ctx.Done():
			p.submit(func() { p.handleAbort(t) })
		case <-t.handle.Done():
			// settled through some other path; nothing left to watch.
		}
	}()
}

func (p *Pool) dispatchOrEnqueue(t *taskRecord) {
	w := p.popAvailable()
	if w == nil && len(p.workers) < int(p.cfg.Limit) {
		created, err := p.spawnWorker()
		if err != nil {
			delete(p.tasks, t.id)
			t.handle.settle(nil, newTaskTaggedError(err, t.id, t.path))
			return
		}
		w = created
	}
	if w == nil {
		p.enqueue(t)
		return
	}
	p.dispatch(w, t)
}

func (p *Pool) popAvailable() *workerRecord {
	n := len(p.available)
	if n == 0 {
		return nil
	}
	w := p.available[n-1]
	p.available = p.available[:n-1]
	w.stopIdleTimer()
	return w
}

func (p *Pool) enqueue(t *taskRecord) {
	if uint(len(p.queue)) >= p.cfg.QueueCapacity {
		delete(p.tasks, t.id)
		t.handle.settle(nil, newTaskTaggedError(ErrQueueFull, t.id, t.path))
		return
	}
	p.queue = append(p.queue, t)
	p.cfg.Provider.UpDownCounter("taskpool.queued").Add(1)
}

// redrive pops queued tasks onto newly available workers until either runs
// dry. Aborted tasks found in the queue are dropped and settled here rather
// than being dispatched.
func (p *Pool) redrive() {
	for len(p.queue) > 0 {
		t := p.queue[0]
		p.queue = p.queue[1:]
		p.cfg.Provider.UpDownCounter("taskpool.queued").Add(-1)

		if t.aborted || t.ctx.Err() != nil {
			delete(p.tasks, t.id)
			t.handle.settle(nil, newTaskTaggedError(ErrTaskAborted, t.id, t.path))
			continue
		}

		w := p.popAvailable()
		if w == nil {
			p.queue = append([]*taskRecord{t}, p.queue...)
			p.cfg.Provider.UpDownCounter("taskpool.queued").Add(1)
			return
		}
		p.dispatch(w, t)
	}
}

func (p *Pool) dispatch(w *workerRecord, t *taskRecord) {
	if t.aborted || t.ctx.Err() != nil {
		p.available = append(p.available, w)
		t.handle.settle(nil, newTaskTaggedError(ErrTaskAborted, t.id, t.path))
		delete(p.tasks, t.id)
		p.redrive()
		return
	}

	w.status = workerExecuting
	t.worker = w
	p.pending[w] = t

	if t.timeout > 0 {
		t.timeoutTimer = time.AfterFunc(t.timeout, func() {
			p.submit(func() { p.handleTimeout(w, t) })
		})
	}

	transferables := scan.Scan(t.args)
	if err := w.port.Send(frame.Frame{UUID: t.id, Path: t.path, Args: t.args}, transferables...); err != nil {
		p.handleCrash(w)
	}
}
