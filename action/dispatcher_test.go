package action

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/transport"
)

func newPair(t *testing.T) (transport.Port, transport.Port) {
	t.Helper()
	a, b := transport.NewInprocessPair(4)
	return a, b
}

func TestDispatcherResolvesNestedPath(t *testing.T) {
	poolSide, workerSide := newPair(t)

	tree := Tree{
		"math": Tree{
			"add": Fn(func(_ *Context, args []any) (any, error) {
				return args[0].(int) + args[1].(int), nil
			}),
		},
	}
	d := NewDispatcher(tree, workerSide)
	go d.Serve()

	id := uuid.New()
	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, Path: "math.add", Args: []any{2, 3}}))

	reply, ok := poolSide.Recv()
	require.True(t, ok)
	require.Equal(t, id, reply.UUID)
	require.Equal(t, 5, reply.Result)
}

func TestDispatcherUnknownPath(t *testing.T) {
	poolSide, workerSide := newPair(t)
	d := NewDispatcher(Tree{}, workerSide)
	go d.Serve()

	id := uuid.New()
	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, Path: "missing.leaf"}))

	reply, ok := poolSide.Recv()
	require.True(t, ok)
	require.NotNil(t, reply.Err)
	require.Equal(t, "path does not exist 'missing.leaf'", reply.Err.Message)
}

func TestDispatcherPanicBecomesError(t *testing.T) {
	poolSide, workerSide := newPair(t)
	tree := Tree{"boom": Fn(func(_ *Context, _ []any) (any, error) {
		panic("kaboom")
	})}
	d := NewDispatcher(tree, workerSide)
	go d.Serve()

	id := uuid.New()
	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, Path: "boom"}))

	reply, ok := poolSide.Recv()
	require.True(t, ok)
	require.NotNil(t, reply.Err)
	require.Contains(t, reply.Err.Message, "panicked")
}

func TestDispatcherRetainEventsThenRelease(t *testing.T) {
	poolSide, workerSide := newPair(t)
	tree := Tree{"stream": Fn(func(ctx *Context, args []any) (any, error) {
		n := args[0].(int)
		ctx.Retain(func() (any, error) { return n, nil })
		go func() {
			for i := 0; i < n; i++ {
				ctx.Dispatch("progress", map[string]int{"i": i})
			}
		}()
		return nil, nil
	})}
	d := NewDispatcher(tree, workerSide)
	go d.Serve()

	id := uuid.New()
	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, Path: "stream", Args: []any{3}}))

	ack, ok := poolSide.Recv()
	require.True(t, ok)
	require.True(t, ack.Retained)

	for i := 0; i < 3; i++ {
		ev, ok := poolSide.Recv()
		require.True(t, ok)
		require.Equal(t, "progress", ev.Event)
	}

	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, ReleaseRequest: true}))
	final, ok := poolSide.Recv()
	require.True(t, ok)
	require.Equal(t, 3, final.Result)
}

func TestDispatcherEarlyReleaseSkipsNormalReply(t *testing.T) {
	poolSide, workerSide := newPair(t)
	tree := Tree{"early": Fn(func(ctx *Context, _ []any) (any, error) {
		ctx.Release(42)
		return 99, errors.New("should never be sent")
	})}
	d := NewDispatcher(tree, workerSide)
	go d.Serve()

	id := uuid.New()
	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, Path: "early"}))

	reply, ok := poolSide.Recv()
	require.True(t, ok)
	require.Equal(t, 42, reply.Result)
	require.Nil(t, reply.Err)

	select {
	case _, ok := <-pollChan(poolSide):
		if ok {
			t.Fatal("unexpected second frame")
		}
	case <-time.After(20 * time.Millisecond):
		// no second frame arrived, as expected
	}
}

// pollChan is a tiny test helper turning one non-blocking Recv into a
// channel so it can race against a timeout without a bespoke port shim.
func pollChan(p transport.Port) <-chan frame.Frame {
	ch := make(chan frame.Frame, 1)
	go func() {
		if f, ok := p.Recv(); ok {
			ch <- f
		}
	}()
	return ch
}
