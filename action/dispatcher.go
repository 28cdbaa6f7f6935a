package action

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/scan"
	"github.com/ygrebnov/taskpool/internal/transport"
)

// Dispatcher is the worker-side runtime. It holds no
// scheduling state: the pool guarantees one worker serves one task at a
// time, so the only state here is the path table and the cleanup hooks of
// currently retained invocations.
type Dispatcher struct {
	table  map[string]Fn
	port   transport.Port
	logger zerolog.Logger

	mu       sync.Mutex
	retained map[uuid.UUID]func() (any, error)
}

// NewDispatcher flattens tree and binds to port.
func NewDispatcher(tree Tree, port transport.Port, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table:    Flatten(tree),
		port:     port,
		logger:   zerolog.Nop(),
		retained: make(map[uuid.UUID]func() (any, error)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger attaches a structured logger for dispatch diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// Serve reads frames from the port until it closes, dispatching each to a
// goroutine so that a retained action's background work never blocks the
// read loop.
func (d *Dispatcher) Serve() {
	for {
		f, ok := d.port.Recv()
		if !ok {
			return
		}
		switch {
		case frame.IsRequest(f):
			go d.handleRequest(f)
		case frame.IsRelease(f):
			go d.handleRelease(f)
		default:
			d.logger.Warn().Str("uuid", f.UUID.String()).Msg("dispatcher: frame with unknown shape ignored")
		}
	}
}

func (d *Dispatcher) registerCleanup(id uuid.UUID, cleanup func() (any, error)) {
	if cleanup == nil {
		return
	}
	d.mu.Lock()
	d.retained[id] = cleanup
	d.mu.Unlock()
}

func (d *Dispatcher) takeCleanup(id uuid.UUID) (func() (any, error), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.retained[id]
	delete(d.retained, id)
	return c, ok
}

func (d *Dispatcher) forget(id uuid.UUID) {
	d.mu.Lock()
	delete(d.retained, id)
	d.mu.Unlock()
}

func (d *Dispatcher) handleRequest(f frame.Frame) {
	fn, ok := d.table[f.Path]
	if !ok {
		_ = d.port.Send(frame.Frame{
			UUID: f.UUID,
			Err:  &frame.Error{Message: fmt.Sprintf("path does not exist '%s'", f.Path)},
		})
		return
	}

	ctx := newContext(f.UUID, d.port, func() { d.forget(f.UUID) })
	result, err := invoke(fn, ctx, f.Args)

	if ctx.wasReleased() {
		return // Context.Release already sent the terminal frame.
	}

	if err != nil {
		_ = d.port.Send(frame.Frame{UUID: f.UUID, Err: toFrameError(err)})
		return
	}

	if retained, cleanup := ctx.isRetained(); retained {
		d.registerCleanup(f.UUID, cleanup)
		_ = d.port.Send(frame.Frame{UUID: f.UUID, Retained: true})
		return
	}

	_ = d.port.Send(frame.Frame{UUID: f.UUID, Result: result}, scan.Scan(result)...)
}

func (d *Dispatcher) handleRelease(f frame.Frame) {
	cleanup, ok := d.takeCleanup(f.UUID)
	if !ok {
		_ = d.port.Send(frame.Frame{UUID: f.UUID, Result: nil})
		return
	}
	result, err := safeCallCleanup(cleanup)
	if err != nil {
		_ = d.port.Send(frame.Frame{UUID: f.UUID, Err: toFrameError(err)})
		return
	}
	_ = d.port.Send(frame.Frame{UUID: f.UUID, Result: result}, scan.Scan(result)...)
}

// invoke calls fn, converting a panic into a descriptive error rather than
// letting it escape and take the read loop down with it.
func invoke(fn Fn, ctx *Context, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action execution panicked: %v", r)
		}
	}()
	return fn(ctx, args)
}

func safeCallCleanup(cleanup func() (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup execution panicked: %v", r)
		}
	}()
	return cleanup()
}

func toFrameError(err error) *frame.Error {
	return &frame.Error{Message: err.Error()}
}
