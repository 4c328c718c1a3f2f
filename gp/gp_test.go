package gp

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/unifit/metrics"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernels(t *testing.T) {
	tests := []struct {
		name   string
		kernel Kernel
		d      float64
		want   float64
	}{
		{"exp squared at zero", NewExpSquared(2, 1), 0, 4},
		{"exp squared", NewExpSquared(2, 1), 1, 4 * math.Exp(-0.5)},
		{"rational quadratic", NewRationalQuadratic(1, 1, 1), 1, 1 / 1.5},
		{"rational quadratic alpha 2", NewRationalQuadratic(1, 2, 2), 2, math.Pow(1.25, -2)},
		{"ornstein uhlenbeck", NewOrnsteinUhlenbeck(3, 2), -2, 9 * math.Exp(-1)},
		{"matern32", NewMatern32(1, math.Sqrt(3)), 1, 2 * math.Exp(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.kernel.Cov(tt.d), 1e-12)
			assert.InDelta(t, tt.kernel.Cov(tt.d), tt.kernel.Cov(-tt.d), 1e-12)
		})
	}
}

func TestGrid(t *testing.T) {
	grid, err := Grid(DefaultGridStart, DefaultGridStop, DefaultGridStep)
	require.NoError(t, err)
	assert.Len(t, grid, 600)
	assert.InDelta(t, 59.9, grid[599], 1e-9)

	_, err = Grid(0, 1, 0)
	assert.Error(t, err)
	_, err = Grid(1, 0, 0.1)
	assert.Error(t, err)
}

func TestPriorEnergy(t *testing.T) {
	grid, err := Grid(0, 60, 0.5)
	require.NoError(t, err)

	for _, k := range []Kernel{
		NewExpSquared(DefaultSigma, DefaultCorrLen),
		NewRationalQuadratic(DefaultSigma, DefaultCorrLen, DefaultAlpha),
		NewOrnsteinUhlenbeck(DefaultSigma, DefaultCorrLen),
	} {
		t.Run(k.Name(), func(t *testing.T) {
			prior := NewPrior(k, grid, DefaultEnergy)
			m := prior.NBasis()
			require.Greater(t, m, 0)
			assert.Less(t, m, len(grid))

			trace := float64(len(grid)) * k.Cov(0)
			var kept float64
			vals := prior.Eigenvalues()
			for i, v := range vals {
				kept += v
				if i > 0 {
					assert.LessOrEqual(t, v, vals[i-1])
				}
			}
			assert.GreaterOrEqual(t, kept/trace, DefaultEnergy-1e-9)
			assert.Less(t, (kept-vals[len(vals)-1])/trace, DefaultEnergy)
		})
	}

	// a rougher kernel needs more basis functions
	smooth := NewPrior(NewExpSquared(1, 10), grid, 0.9)
	rough := NewPrior(NewOrnsteinUhlenbeck(1, 10), grid, 0.9)
	assert.Greater(t, rough.NBasis(), smooth.NBasis())
}

func TestPriorDesignInterpolates(t *testing.T) {
	grid := []float64{0, 1, 2, 3}
	prior := NewPrior(NewExpSquared(1, 1), grid, 1)
	basis, err := prior.Basis()
	require.NoError(t, err)

	design, err := prior.Design([]float64{1, 1.5, -4, 10})
	require.NoError(t, err)
	_, m := basis.Dims()
	for c := 0; c < m; c++ {
		assert.InDelta(t, basis.At(1, c), design.At(0, c), 1e-12)
		assert.InDelta(t, (basis.At(1, c)+basis.At(2, c))/2, design.At(1, c), 1e-12)
		assert.InDelta(t, basis.At(0, c), design.At(2, c), 1e-12)
		assert.InDelta(t, basis.At(3, c), design.At(3, c), 1e-12)
	}
}

func TestPriorInvalid(t *testing.T) {
	_, err := NewPrior(nil, []float64{0, 1}, 0.9).Basis()
	assert.Error(t, err)
	_, err = NewPrior(NewExpSquared(1, 1), []float64{1, 0}, 0.9).Basis()
	assert.Error(t, err)
	_, err = NewPrior(NewExpSquared(1, 1), []float64{0, 1}, 0).Basis()
	assert.Error(t, err)
}

func sineData(n int, noise float64) ([]float64, []float64, []float64) {
	rng := rand.New(rand.NewPCG(11, 11))
	x := make([]float64, n)
	y := make([]float64, n)
	truth := make([]float64, n)
	for i := range x {
		x[i] = rng.Float64() * 20
		truth[i] = 2 + math.Sin(x[i])
		y[i] = truth[i] + noise*rng.NormFloat64()
	}
	return x, y, truth
}

func TestRegressorFitsSmoothFunction(t *testing.T) {
	grid, err := Grid(0, 20, 0.1)
	require.NoError(t, err)
	prior := NewPrior(NewExpSquared(10, 2), grid, 0.999)

	x, y, truth := sineData(200, 0.1)
	r := NewRegressor(prior)
	require.NoError(t, r.Fit(x, y))

	pred, err := r.Predict(x)
	require.NoError(t, err)
	scores, err := metrics.Regression(truth, pred)
	require.NoError(t, err)
	assert.Greater(t, scores.R2, 0.9)
	assert.Less(t, r.NoiseVariance(), 0.05)
	assert.Greater(t, r.NoiseVariance(), 0.0)

	// the shared basis gives identical fits on a second regressor
	again := NewRegressor(prior)
	require.NoError(t, again.Fit(x, y))
	pred2, err := again.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, pred, pred2)
}

func TestRegressorConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	grid, err := Grid(0, 20, 0.5)
	require.NoError(t, err)
	x, y, _ := sineData(50, 0.3)

	r := NewRegressor(NewPrior(NewOrnsteinUhlenbeck(5, 3), grid, 0.9), WithMaxIter(1), WithTol(1e-15))
	require.NoError(t, r.Fit(x, y))
	converged, iters := r.Converged()
	assert.False(t, converged)
	assert.Equal(t, 1, iters)

	require.Len(t, warnings, 1)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As(warnings[0], &cw))
}

func TestRegressorErrors(t *testing.T) {
	grid, err := Grid(0, 10, 1)
	require.NoError(t, err)
	r := NewRegressor(NewPrior(NewExpSquared(1, 1), grid, 0.9))

	_, err = r.Predict([]float64{1})
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	assert.Error(t, r.Fit([]float64{1, 2}, []float64{1}))
	assert.Error(t, NewRegressor(nil).Fit([]float64{1, 2}, []float64{1, 2}))
	assert.Error(t, NewRegressor(r.Prior, WithMaxIter(0)).Fit([]float64{1, 2}, []float64{1, 2}))
}

func TestRegressorSingleSample(t *testing.T) {
	grid, err := Grid(0, 10, 0.1)
	require.NoError(t, err)
	r := NewRegressor(NewPrior(NewExpSquared(DefaultSigma, DefaultCorrLen), grid, DefaultEnergy))

	require.NoError(t, r.Fit([]float64{1}, []float64{2}))
	pred, err := r.Predict([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 2, pred[0], 1e-3)
	converged, _ := r.Converged()
	assert.True(t, converged)
}

func TestRegressorConstantTarget(t *testing.T) {
	grid, err := Grid(DefaultGridStart, DefaultGridStop, DefaultGridStep)
	require.NoError(t, err)

	kernels := []struct {
		name   string
		kernel Kernel
	}{
		{"exp squared", NewExpSquared(DefaultSigma, DefaultCorrLen)},
		{"rational quadratic", NewRationalQuadratic(DefaultSigma, DefaultCorrLen, DefaultAlpha)},
		{"ornstein uhlenbeck", NewOrnsteinUhlenbeck(DefaultSigma, DefaultCorrLen)},
		{"matern32", NewMatern32(DefaultSigma, DefaultCorrLen)},
	}

	x := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	y := []float64{3, 3, 3, 3, 3, 3, 3, 3}
	for _, k := range kernels {
		t.Run(k.name, func(t *testing.T) {
			r := NewRegressor(NewPrior(k.kernel, grid, DefaultEnergy))
			require.NoError(t, r.Fit(x, y))

			pred, err := r.Predict(x)
			require.NoError(t, err)
			for _, v := range pred {
				assert.InDelta(t, 3, v, 1e-3)
			}
			assert.Greater(t, r.NoiseVariance(), 0.0)
		})
	}
}
