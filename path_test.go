package taskpool_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/taskpool"
	"github.com/ygrebnov/taskpool/action"
)

func TestPathAccumulatesDottedSegments(t *testing.T) {
	p := taskpool.New(inprocessFactory(action.Tree{}), taskpool.WithLimit(1))
	defer p.Shutdown()

	got := p.Root().With("math").With("add").String()
	require.Equal(t, "math.add", got)
}

func TestPathWithIsImmutable(t *testing.T) {
	p := taskpool.New(inprocessFactory(action.Tree{}), taskpool.WithLimit(1))
	defer p.Shutdown()

	base := p.Root().With("math")
	left := base.With("add")
	right := base.With("sub")

	require.Equal(t, "math", base.String())
	require.Equal(t, "math.add", left.String())
	require.Equal(t, "math.sub", right.String())
}

func TestPathCallDispatchesAccumulatedPath(t *testing.T) {
	tree := action.Tree{
		"math": action.Tree{
			"add": action.Fn(func(_ *action.Context, args []any) (any, error) {
				return args[0].(int) + args[1].(int), nil
			}),
		},
	}
	p := taskpool.New(inprocessFactory(tree), taskpool.WithLimit(1))
	defer p.Shutdown()

	h := p.Root().With("math").With("add").Call(context.Background(), 2, 3)
	result, err := await(t, h, time.Second)
	require.NoError(t, err)
	require.Equal(t, 5, result)
}
