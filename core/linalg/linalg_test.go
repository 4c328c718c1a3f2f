package linalg

import (
	"testing"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLstSq(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
	})
	w, err := LstSq("test", a, mat.NewVecDense(3, []float64{1, 3, 5}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w.AtVec(0), 1e-10)
	assert.InDelta(t, 2.0, w.AtVec(1), 1e-10)

	t.Run("rank deficient gives minimum norm", func(t *testing.T) {
		a := mat.NewDense(2, 2, []float64{
			1, 1,
			1, 1,
		})
		w, err := LstSq("test", a, mat.NewVecDense(2, []float64{2, 2}))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, w.AtVec(0), 1e-10)
		assert.InDelta(t, 1.0, w.AtVec(1), 1e-10)
	})

	t.Run("zero matrix", func(t *testing.T) {
		_, err := LstSq("test", mat.NewDense(2, 2, nil), mat.NewVecDense(2, []float64{1, 1}))
		assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
	})
}

func TestSolveSPD(t *testing.T) {
	a := mat.NewSymDense(2, []float64{
		4, 1,
		1, 3,
	})
	x, err := SolveSPD("test", a, mat.NewVecDense(2, []float64{1, 2}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/11.0, x.AtVec(0), 1e-12)
	assert.InDelta(t, 7.0/11.0, x.AtVec(1), 1e-12)

	_, err = SolveSPD("test", mat.NewSymDense(2, []float64{1, 2, 2, 1}), mat.NewVecDense(2, nil))
	assert.Error(t, err)
}

func TestInterp(t *testing.T) {
	xp := []float64{0, 1, 3}
	fp := []float64{0, 10, 30}
	got := Interp([]float64{-1, 0, 0.5, 1, 2, 3, 4}, xp, fp)
	assert.InDeltaSlice(t, []float64{0, 0, 5, 10, 20, 30, 30}, got, 1e-12)
}

func TestArgsort(t *testing.T) {
	assert.Equal(t, []int{1, 3, 0, 2}, Argsort([]float64{3, 1, 4, 1.5}))
	assert.Equal(t, []int{0, 1}, Argsort([]float64{2, 2}))
}
