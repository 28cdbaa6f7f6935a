package taskpool

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// TaskMetaError exposes correlation metadata for a task failure: the
// correlation id the task was admitted with, and the dotted path it was
// invoking. Every failure a Pool settles a TaskHandle with implements it.
type TaskMetaError interface {
	error
	Unwrap() error
	TaskID() (uuid.UUID, bool)
	TaskPath() (string, bool)
}

type taskTaggedError struct {
	err  error
	id   uuid.UUID
	path string
}

func newTaskTaggedError(err error, id uuid.UUID, path string) error {
	if err == nil {
		return nil
	}
	return &taskTaggedError{err: err, id: id, path: path}
}

func (e *taskTaggedError) Error() string { return e.err.Error() }
func (e *taskTaggedError) Unwrap() error { return e.err }

func (e *taskTaggedError) TaskID() (uuid.UUID, bool) {
	if e.id == uuid.Nil {
		return uuid.Nil, false
	}
	return e.id, true
}

func (e *taskTaggedError) TaskPath() (string, bool) {
	if e.path == "" {
		return "", false
	}
	return e.path, true
}

func (e *taskTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "task(path=%s,id=%v): %+v", e.path, e.id, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTaskID returns the correlation id carried by err, if any.
func ExtractTaskID(err error) (uuid.UUID, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.TaskID()
	}
	return uuid.Nil, false
}

// ExtractTaskPath returns the dotted action path carried by err, if any.
func ExtractTaskPath(err error) (string, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.TaskPath()
	}
	return "", false
}
