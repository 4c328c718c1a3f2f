package modelselection

import (
	"testing"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFoldSplitSizesAndCoverage(t *testing.T) {
	tests := []struct {
		n, k int
	}{
		{n: 10, k: 2},
		{n: 10, k: 3},
		{n: 11, k: 5},
		{n: 5, k: 5},
		{n: 203, k: 7},
	}

	for _, tt := range tests {
		folds, err := NewKFold(tt.k, 42).Split(tt.n)
		require.NoError(t, err)
		require.Len(t, folds, tt.k)

		minTrain := tt.n * (tt.k - 1) / tt.k
		maxTrain := (tt.n*(tt.k-1) + tt.k - 1) / tt.k

		seen := make([]int, tt.n)
		for i, f := range folds {
			assert.Equal(t, i+1, f.Index)
			assert.Equal(t, tt.n, len(f.Train)+len(f.Test))
			assert.GreaterOrEqual(t, len(f.Train), minTrain, "n=%d k=%d", tt.n, tt.k)
			assert.LessOrEqual(t, len(f.Train), maxTrain, "n=%d k=%d", tt.n, tt.k)
			assert.IsIncreasing(t, f.Train)
			for _, idx := range f.Test {
				seen[idx]++
			}

			inTest := make(map[int]bool, len(f.Test))
			for _, idx := range f.Test {
				inTest[idx] = true
			}
			for _, idx := range f.Train {
				assert.False(t, inTest[idx], "index %d in both train and test", idx)
			}
		}
		for idx, c := range seen {
			assert.Equal(t, 1, c, "index %d held out %d times", idx, c)
		}
	}
}

func TestKFoldDeterministic(t *testing.T) {
	a, err := NewKFold(5, 42).Split(97)
	require.NoError(t, err)
	b, err := NewKFold(5, 42).Split(97)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewKFold(5, 7).Split(97)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestKFoldWithoutShuffle(t *testing.T) {
	kf := &KFold{NSplits: 3}
	folds, err := kf.Split(7)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, folds[0].Test)
	assert.Equal(t, []int{3, 4}, folds[1].Test)
	assert.Equal(t, []int{5, 6}, folds[2].Test)
	assert.Equal(t, []int{0, 1, 2, 5, 6}, folds[1].Train)
}

func TestKFoldConfigurationErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		n, k int
	}{
		{"k below two", 10, 1},
		{"k exceeds samples", 4, 5},
		{"empty dataset", 0, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKFold(tt.k, 42).Split(tt.n)
			var cfgErr *errors.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, "folds", cfgErr.Field)
		})
	}
}

func TestTake(t *testing.T) {
	assert.Equal(t, []float64{30, 10}, Take([]float64{10, 20, 30}, []int{2, 0}))
	assert.Empty(t, Take([]float64{1}, nil))
}
