package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000, 1001} {
		seen := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, c := range seen {
			assert.EqualValues(t, 1, c, "items=%d index=%d", items, i)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(8, 3))
	assert.Equal(t, 2, Workers(2, 10))
	assert.Equal(t, 1, Workers(5, 0))
	assert.GreaterOrEqual(t, Workers(0, 1000), 1)
}

func TestForEach(t *testing.T) {
	t.Run("sequential order", func(t *testing.T) {
		var order []int
		err := ForEach(context.Background(), 5, 1, func(_ context.Context, i int) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	})

	t.Run("parallel writes to slots", func(t *testing.T) {
		out := make([]int, 50)
		err := ForEach(context.Background(), len(out), 4, func(_ context.Context, i int) error {
			out[i] = i * i
			return nil
		})
		require.NoError(t, err)
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	})

	t.Run("first error returned", func(t *testing.T) {
		boom := errors.New("boom")
		for _, workers := range []int{1, 4} {
			err := ForEach(context.Background(), 20, workers, func(_ context.Context, i int) error {
				if i == 3 {
					return boom
				}
				return nil
			})
			assert.ErrorIs(t, err, boom, "workers=%d", workers)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := ForEach(ctx, 3, 1, func(context.Context, int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
