package qnet

import (
	"context"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNet(t *testing.T) *Net {
	t.Helper()
	n := New(DefaultConf(9))
	require.NoError(t, n.Init())
	t.Cleanup(func() { n.Close() })
	return n
}

func TestInferenceSanity(t *testing.T) {
	n := newTestNet(t)
	t.Logf("Number of nodes: %d, learnables: %d", len(n.g.AllNodes()), len(n.Model()))
	assert.Len(t, n.Model(), 4, "one hidden layer: two weights and two biases")

	out, err := n.Predict([]float32{
		1, 2, 3,
		1, 1, 1,
		3, 2, 1,
	})
	require.NoError(t, err)
	assert.Len(t, out, 9)

	_, err = n.Predict([]float32{1, 2, 3})
	assert.Error(t, err)
}

func TestTrain(t *testing.T) {
	n := newTestNet(t)
	ctx := context.Background()

	xs := [][]float32{
		{1, 1, 1, 1, 2, 1, 1, 1, 1},
		{3, 1, 1, 1, 2, 1, 1, 1, 1},
		{3, 2, 1, 1, 2, 3, 1, 1, 1},
	}
	ys := [][]float32{
		{0, 0, 0, 0, -1, 0, 0, 0, 0},
		{-1, 5, 0, 0, -1, 0, 0, 0, 0},
		{-1, -1, 0, 0, -1, -1, 10, 0, 0},
	}

	before, err := n.Predict(xs[2])
	require.NoError(t, err)

	var first, last float32
	for i := 0; i < 300; i++ {
		cost, err := n.Train(ctx, xs, ys)
		require.NoError(t, err, "iteration %d", i)
		if i == 0 {
			first = cost
		}
		last = cost
	}
	t.Logf("cost %v -> %v", first, last)
	assert.Less(t, last, first)

	after, err := n.Predict(xs[2])
	require.NoError(t, err)
	assert.Less(t, math32.Abs(after[6]-10), math32.Abs(before[6]-10), "prediction should move towards the target")
}

func TestTrainErrors(t *testing.T) {
	n := newTestNet(t)
	ctx := context.Background()
	x := make([]float32, 9)
	y := make([]float32, 9)

	_, err := n.Train(ctx, [][]float32{x}, nil)
	assert.Error(t, err, "mismatched lengths")

	_, err = n.Train(ctx, nil, nil)
	assert.Error(t, err, "empty batch")

	var big [][]float32
	for i := 0; i <= n.BatchSize; i++ {
		big = append(big, x)
	}
	_, err = n.Train(ctx, big, big)
	assert.Error(t, err, "batch larger than BatchSize")

	_, err = n.Train(ctx, [][]float32{{1, 2}}, [][]float32{y})
	assert.Error(t, err, "wrong shape")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = n.Train(cancelled, [][]float32{x}, [][]float32{y})
	assert.ErrorIs(t, err, context.Canceled)

	fwd := New(DefaultConf(9))
	fwd.FwdOnly = true
	require.NoError(t, fwd.Init())
	defer fwd.Close()
	_, err = fwd.Train(ctx, [][]float32{x}, [][]float32{y})
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	conf := DefaultConf(9)
	conf.BatchSize = 0
	assert.Error(t, New(conf).Init())

	_, err := New(DefaultConf(9)).Predict(make([]float32, 9))
	assert.Error(t, err, "uninitialized")
}
