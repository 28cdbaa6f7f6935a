package action

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/scan"
	"github.com/ygrebnov/taskpool/internal/transport"
)

// Context is built fresh per inbound request and passed as the action's
// receiver, the worker-side handle to the in-flight call.
type Context struct {
	uuid uuid.UUID
	port transport.Port
	// forget unregisters this invocation's cleanup hook; Release calls it
	// just before sending the terminal frame.
	forget func()

	mu          sync.Mutex
	retained    bool
	cleanup     func() (any, error)
	releaseOnce sync.Once
	didRelease  bool
}

func newContext(id uuid.UUID, port transport.Port, forget func()) *Context {
	return &Context{uuid: id, port: port, forget: forget}
}

// Dispatch sends an event frame. Any transferable handles found in data are
// handed to the port alongside the frame, invalidating them on this side
// once sent.
func (c *Context) Dispatch(event string, data any) {
	transferables := scan.Scan(data)
	_ = c.port.Send(frame.Frame{UUID: c.uuid, Event: event, Data: data}, transferables...)
}

// Retain marks the invocation as long-lived: its eventual return value is
// ignored, and cleanup (if non-nil) is invoked when the pool later sends a
// release request for this task.
func (c *Context) Retain(cleanup func() (any, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retained = true
	c.cleanup = cleanup
}

// Release is the early-completion path: it settles the task with result
// immediately and forgets any registered cleanup.
func (c *Context) Release(result any) {
	c.releaseOnce.Do(func() {
		c.mu.Lock()
		c.didRelease = true
		c.mu.Unlock()
		c.forget()
		transferables := scan.Scan(result)
		_ = c.port.Send(frame.Frame{UUID: c.uuid, Result: result}, transferables...)
	})
}

func (c *Context) isRetained() (bool, func() (any, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retained, c.cleanup
}

func (c *Context) wasReleased() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.didRelease
}
