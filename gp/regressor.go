// Package gp implements additive models with Gaussian-process priors.
//
// A Prior turns a stationary kernel into a finite basis on a fixed grid. The
// Regressor adds a constant term with a broad prior and performs Bayesian
// linear regression on that basis, re-estimating the observation noise from
// the data. Predictions are posterior means.
package gp

import (
	"math"

	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Default fit settings.
const (
	DefaultConstVariance = 1e6
	DefaultMaxIter       = 50
	DefaultTol           = 1e-6

	// tau·max(diag Φᵀ·Φ) stays below maxConditioning so the posterior
	// precision remains factorisable when the data are fitted exactly
	maxConditioning = 1e10
	// smallest residual degrees of freedom that still carry a noise estimate
	minResidualDOF = 1e-8
	// jitter added to the posterior precision diagonal is tried in steps of
	// jitterGrowth, starting at jitterStart times its largest entry
	jitterStart  = 1e-12
	jitterGrowth = 100
	jitterTries  = 5
)

// Regressor fits y = c + Σ wⱼ·φⱼ(x) + ε with wⱼ ~ N(0, 1), c ~ N(0, ConstVariance)
// and ε ~ N(0, NoiseVariance).
type Regressor struct {
	model.BaseEstimator

	Prior         *Prior
	ConstVariance float64
	MaxIter       int
	Tol           float64

	weights       []float64
	noiseVariance float64
	iterations    int
	converged     bool
}

// Option configures a Regressor
type Option func(*Regressor)

// WithMaxIter bounds the noise re-estimation loop
func WithMaxIter(n int) Option {
	return func(r *Regressor) {
		r.MaxIter = n
	}
}

// WithTol sets the relative tolerance on the noise precision
func WithTol(tol float64) Option {
	return func(r *Regressor) {
		r.Tol = tol
	}
}

// WithConstVariance sets the prior variance of the constant term
func WithConstVariance(v float64) Option {
	return func(r *Regressor) {
		r.ConstVariance = v
	}
}

// NewRegressor creates a regressor over the given prior.
func NewRegressor(prior *Prior, opts ...Option) *Regressor {
	r := &Regressor{
		Prior:         prior,
		ConstVariance: DefaultConstVariance,
		MaxIter:       DefaultMaxIter,
		Tol:           DefaultTol,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit computes the posterior over the weights. The noise precision τ starts
// at 1/var(y) and is updated with τ = (n − γ)/RSS, where γ is the number of
// well-determined parameters, until its relative change drops below Tol.
// Running out of iterations emits a ConvergenceWarning and keeps the last
// estimate.
func (r *Regressor) Fit(x, y []float64) error {
	const op = "gp.Regressor.Fit"
	if err := model.CheckXY(op, x, y); err != nil {
		return err
	}
	if r.Prior == nil {
		return errors.NewValueError(op, "prior is required")
	}
	if r.ConstVariance <= 0 {
		return errors.NewValueError(op, "constant prior variance must be positive")
	}
	if r.MaxIter < 1 {
		return errors.NewValueError(op, "max_iter must be positive")
	}

	phi, err := r.design(x)
	if err != nil {
		return err
	}
	n, p := phi.Dims()
	prec := r.priorPrecision(p)
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var gram mat.SymDense
	gram.SymOuterK(1, phi.T())
	var phiTy mat.VecDense
	phiTy.MulVec(phi.T(), yVec)

	var diagMax float64
	for i := 0; i < p; i++ {
		diagMax = math.Max(diagMax, gram.At(i, i))
	}
	tauCap := maxConditioning / diagMax

	tau := 1.0
	if v := stat.Variance(y, nil); v > 0 && !math.IsNaN(v) {
		tau = 1 / v
	}
	tau = math.Min(tau, tauCap)

	var mean *mat.VecDense
	r.converged = false
	r.iterations = 0
	for iter := 1; iter <= r.MaxIter; iter++ {
		r.iterations = iter
		m, cov, err := posterior(op, &gram, &phiTy, prec, tau)
		if err != nil {
			return err
		}
		mean = m

		var gamma float64
		for i := 0; i < p; i++ {
			gamma += 1 - prec[i]*cov.At(i, i)
		}
		// every sample is spent on the weights, nothing is left to
		// estimate the noise from
		dof := float64(n) - gamma
		if dof <= minResidualDOF {
			r.converged = true
			break
		}

		next := tauCap
		if rss := residualSS(phi, mean, yVec); rss > 0 {
			next = math.Min(dof/rss, tauCap)
		}

		change := math.Abs(next-tau) / tau
		tau = next
		if change < r.Tol {
			r.converged = true
			break
		}
	}

	// posterior under the final precision estimate
	mean, _, err = posterior(op, &gram, &phiTy, prec, tau)
	if err != nil {
		return err
	}
	if err := errors.CheckNumericalStability(op, mean.RawVector().Data, r.iterations); err != nil {
		return err
	}
	if !r.converged {
		errors.Warn(errors.NewConvergenceWarning("gp.noise_precision", r.MaxIter,
			"noise variance re-estimation did not reach tolerance"))
	}

	r.weights = append([]float64(nil), mean.RawVector().Data...)
	r.noiseVariance = 1 / tau
	r.SetFitted(n)
	return nil
}

// posterior returns the mean and covariance of the weights for noise precision tau.
func posterior(op string, gram *mat.SymDense, phiTy *mat.VecDense, prec []float64, tau float64) (*mat.VecDense, *mat.SymDense, error) {
	p := gram.SymmetricDim()
	a := mat.NewSymDense(p, nil)
	a.ScaleSym(tau, gram)
	var diagMax float64
	for i := 0; i < p; i++ {
		a.SetSym(i, i, a.At(i, i)+prec[i])
		diagMax = math.Max(diagMax, a.At(i, i))
	}

	chol, err := factorize(op, a, diagMax)
	if err != nil {
		return nil, nil, err
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, nil, errors.NewModelError(op, "posterior covariance", err)
	}

	rhs := mat.NewVecDense(p, nil)
	rhs.ScaleVec(tau, phiTy)
	var mean mat.VecDense
	if err := chol.SolveVecTo(&mean, rhs); err != nil {
		return nil, nil, errors.NewModelError(op, "posterior mean", err)
	}
	return &mean, &cov, nil
}

// factorize returns the Cholesky factor of a, adding a growing diagonal
// jitter when rounding has left a numerically indefinite.
func factorize(op string, a *mat.SymDense, diagMax float64) (*mat.Cholesky, error) {
	var chol mat.Cholesky
	if chol.Factorize(a) {
		return &chol, nil
	}
	p := a.SymmetricDim()
	jittered := mat.NewSymDense(p, nil)
	jitter := jitterStart * diagMax
	for try := 0; try < jitterTries; try++ {
		jittered.CopySym(a)
		for i := 0; i < p; i++ {
			jittered.SetSym(i, i, jittered.At(i, i)+jitter)
		}
		if chol.Factorize(jittered) {
			return &chol, nil
		}
		jitter *= jitterGrowth
	}
	return nil, errors.NewModelError(op, "posterior precision is not positive definite", errors.ErrSingularMatrix)
}

func residualSS(phi *mat.Dense, w, y *mat.VecDense) float64 {
	var fitted mat.VecDense
	fitted.MulVec(phi, w)
	var rss float64
	for i := 0; i < y.Len(); i++ {
		d := y.AtVec(i) - fitted.AtVec(i)
		rss += d * d
	}
	return rss
}

// design appends the constant column to the interpolated basis.
func (r *Regressor) design(x []float64) (*mat.Dense, error) {
	basis, err := r.Prior.Design(x)
	if err != nil {
		return nil, err
	}
	n, m := basis.Dims()
	phi := mat.NewDense(n, m+1, nil)
	phi.Slice(0, n, 0, m).(*mat.Dense).Copy(basis)
	for i := 0; i < n; i++ {
		phi.Set(i, m, 1)
	}
	return phi, nil
}

func (r *Regressor) priorPrecision(p int) []float64 {
	prec := make([]float64, p)
	for i := range prec {
		prec[i] = 1
	}
	prec[p-1] = 1 / r.ConstVariance
	return prec
}

// Predict returns the posterior mean at x.
func (r *Regressor) Predict(x []float64) ([]float64, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("gp.Regressor", "Predict")
	}
	phi, err := r.design(x)
	if err != nil {
		return nil, err
	}
	var out mat.VecDense
	out.MulVec(phi, mat.NewVecDense(len(r.weights), r.weights))
	return append([]float64(nil), out.RawVector().Data...), nil
}

// NoiseVariance returns the estimated observation noise variance.
func (r *Regressor) NoiseVariance() float64 {
	return r.noiseVariance
}

// Converged reports whether the last fit reached the tolerance, and after how
// many iterations.
func (r *Regressor) Converged() (bool, int) {
	return r.converged, r.iterations
}
