// Package frame defines the wire shapes exchanged between the pool and a
// worker. It is internal because callers only ever see the
// public Frame alias re-exported by the root package; keeping the type here
// lets both the scheduler and the worker-side dispatch package depend on it
// without depending on each other.
package frame

import "github.com/google/uuid"

// Frame is the unit exchanged over a worker's transport. A single struct
// covers every shape on the wire; which fields are populated depends on
// direction:
//
//	pool   -> worker   request   {UUID, Path, Args}
//	pool   -> worker   release   {UUID, ReleaseRequest: true}
//	worker -> pool     retained  {UUID, Retained: true}
//	worker -> pool     event     {UUID, Event, Data}
//	worker -> pool     success   {UUID, Result}
//	worker -> pool     failure   {UUID, Err}
//
// A release acknowledgement from the worker reuses the success/failure
// shape. Any frame whose UUID does not correlate to a known task is
// silently ignored by the pool.
type Frame struct {
	UUID uuid.UUID `json:"uuid"`

	Path string `json:"path,omitempty"`
	Args []any  `json:"args,omitempty"`

	ReleaseRequest bool `json:"release,omitempty"`
	Retained       bool `json:"retained,omitempty"`

	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`

	Result any    `json:"result,omitempty"`
	Err    *Error `json:"error,omitempty"`
}

// Error is the wire shape of a worker-reported failure.
type Error struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrorMessage returns e's message, falling back to a generic one when e is
// nil or carries no message.
func ErrorMessage(e *Error) string {
	if e == nil || e.Message == "" {
		return "worker error"
	}
	return e.Message
}

// IsRequest reports whether f is a pool->worker request frame.
func IsRequest(f Frame) bool { return f.Path != "" }

// IsRelease reports whether f is a pool->worker release frame.
func IsRelease(f Frame) bool { return f.ReleaseRequest }

// IsRetained reports whether f is a worker->pool retained acknowledgement.
func IsRetained(f Frame) bool { return f.Retained }

// IsEvent reports whether f is a worker->pool event frame.
func IsEvent(f Frame) bool { return f.Event != "" }

// IsFailure reports whether f is a worker->pool failure frame (including a
// failed release acknowledgement).
func IsFailure(f Frame) bool { return f.Err != nil }
