package taskpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskHandleSettleOnce(t *testing.T) {
	h := newTaskHandle()

	h.settle(1, nil)
	h.settle(2, nil) // second settle must be ignored

	select {
	case <-h.Done():
	default:
		t.Fatal("handle did not settle")
	}

	result, err := h.Result()
	require.NoError(t, err)
	require.Equal(t, 1, result)
}

func TestTaskHandleOnFiresInOrder(t *testing.T) {
	h := newTaskHandle()

	var calls []string
	h.On("progress", func(any) { calls = append(calls, "first") })
	h.On("progress", func(any) { calls = append(calls, "second") })

	h.dispatchEvent("progress", nil)

	require.Equal(t, []string{"first", "second"}, calls)
}

func TestTaskHandleDropsEventsAfterSettlement(t *testing.T) {
	h := newTaskHandle()

	var fired bool
	h.On("progress", func(any) { fired = true })
	h.settle("done", nil)
	h.dispatchEvent("progress", nil)

	require.False(t, fired, "event dispatched after settlement must be dropped")
}

func TestTaskHandleOnAfterSettlementIsNoop(t *testing.T) {
	h := newTaskHandle()
	h.settle("done", nil)

	var fired bool
	h.On("progress", func(any) { fired = true })
	h.dispatchEvent("progress", nil)

	require.False(t, fired)
}

func TestTaskHandleReleaseNoopWhenNotRetained(t *testing.T) {
	h := newTaskHandle()

	var called bool
	h.releaseFn = func() { called = true }
	h.Release() // never marked retained: must not panic or invoke anything
	require.False(t, called)
}

func TestTaskHandleReleaseInvokesReleaseFnOnce(t *testing.T) {
	h := newTaskHandle()

	var calls int
	h.markRetained(func() { calls++ })

	h.Release()
	h.Release()

	require.Equal(t, 1, calls)
}

func TestTaskHandleReleaseNoopAfterSettlement(t *testing.T) {
	h := newTaskHandle()

	var called bool
	h.markRetained(func() { called = true })
	h.settle("released", nil)

	h.Release()

	require.False(t, called, "Release on an already-settled handle must be a no-op")
}
