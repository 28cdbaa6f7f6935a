package transport

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/taskpool/internal/frame"
)

type fakeTransferable struct{ transferred *bool }

func (f fakeTransferable) Transfer() { *f.transferred = true }

func TestInprocessPairRoundTrip(t *testing.T) {
	poolSide, workerSide := NewInprocessPair(1)

	id := uuid.New()
	require.NoError(t, poolSide.Send(frame.Frame{UUID: id, Path: "math.add", Args: []any{1, 2}}))

	got, ok := workerSide.Recv()
	require.True(t, ok)
	require.Equal(t, id, got.UUID)
	require.Equal(t, "math.add", got.Path)

	require.NoError(t, workerSide.Send(frame.Frame{UUID: id, Result: 3}))
	reply, ok := poolSide.Recv()
	require.True(t, ok)
	require.Equal(t, 3, reply.Result)
}

func TestInprocessCloseUnblocksRecv(t *testing.T) {
	poolSide, workerSide := NewInprocessPair(0)

	done := make(chan struct{})
	go func() {
		_, ok := workerSide.Recv()
		require.False(t, ok)
		close(done)
	}()

	require.NoError(t, poolSide.Close())
	<-done
}

func TestInprocessSendAfterCloseErrors(t *testing.T) {
	poolSide, _ := NewInprocessPair(0)
	require.NoError(t, poolSide.Close())
	require.Error(t, poolSide.Send(frame.Frame{UUID: uuid.New()}))
}

func TestInprocessSendTransfersHandles(t *testing.T) {
	poolSide, workerSide := NewInprocessPair(1)

	var transferred bool
	require.NoError(t, poolSide.Send(frame.Frame{UUID: uuid.New()}, fakeTransferable{transferred: &transferred}))
	require.True(t, transferred)

	_, ok := workerSide.Recv()
	require.True(t, ok)
}

func TestInprocessSendAfterCloseDoesNotTransferHandles(t *testing.T) {
	poolSide, _ := NewInprocessPair(0)
	require.NoError(t, poolSide.Close())

	var transferred bool
	require.Error(t, poolSide.Send(frame.Frame{UUID: uuid.New()}, fakeTransferable{transferred: &transferred}))
	require.False(t, transferred, "a handle must not be invalidated when the frame was never actually sent")
}
