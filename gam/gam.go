// Package gam implements a univariate penalised-spline generalized additive
// model with identity link (a LinearGAM with one smooth term).
//
// The smooth term is a cubic B-spline basis over the training range with a
// second-order difference penalty on adjacent coefficients. An unpenalised
// intercept is fitted alongside it.
package gam

import (
	"math"

	"github.com/YuminosukeSato/unifit/core/linalg"
	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Defaults of a single smooth term.
const (
	DefaultNSplines    = 20
	DefaultSplineOrder = 3
	DefaultLambda      = 0.6
	DefaultPenaltyDiff = 2
)

// LinearGAM is y = intercept + s(x) + noise.
type LinearGAM struct {
	model.BaseEstimator

	NSplines    int
	SplineOrder int
	Lambda      float64
	PenaltyDiff int

	basis     *BSplineBasis
	intercept float64
	coef      []float64
	edof      float64
}

// Option configures a LinearGAM
type Option func(*LinearGAM)

// WithNSplines sets the number of basis functions
func WithNSplines(n int) Option {
	return func(g *LinearGAM) {
		g.NSplines = n
	}
}

// WithSplineOrder sets the spline degree
func WithSplineOrder(order int) Option {
	return func(g *LinearGAM) {
		g.SplineOrder = order
	}
}

// WithLambda sets the smoothing strength
func WithLambda(lambda float64) Option {
	return func(g *LinearGAM) {
		g.Lambda = lambda
	}
}

// NewLinearGAM creates a model with 20 cubic splines and lambda 0.6 unless
// overridden.
func NewLinearGAM(opts ...Option) *LinearGAM {
	g := &LinearGAM{
		NSplines:    DefaultNSplines,
		SplineOrder: DefaultSplineOrder,
		Lambda:      DefaultLambda,
		PenaltyDiff: DefaultPenaltyDiff,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fit solves the penalised least squares problem
//
//	min ||y - X·β||² + λ·||D·β_s||²
//
// where X = [1, B(x)] and D takes differences of the spline coefficients β_s.
// The augmented system is solved by SVD, which also copes with the collinearity
// between the intercept and the spline basis.
func (g *LinearGAM) Fit(x, y []float64) error {
	const op = "LinearGAM.Fit"
	if err := model.CheckXY(op, x, y); err != nil {
		return err
	}
	if g.Lambda < 0 {
		return errors.NewValueError(op, "lambda must be non-negative")
	}
	if g.PenaltyDiff < 0 || g.PenaltyDiff >= g.NSplines {
		return errors.NewValueError(op, "penalty difference order must be smaller than n_splines")
	}

	lo, hi := minMax(x)
	basis, err := NewBSplineBasis(g.NSplines, g.SplineOrder, lo, hi)
	if err != nil {
		return err
	}

	n := len(x)
	m := g.NSplines
	p := m + 1
	d := differenceOperator(m, g.PenaltyDiff)
	dRows, _ := d.Dims()

	aug := mat.NewDense(n+dRows, p, nil)
	for i, xi := range x {
		aug.Set(i, 0, 1)
		for j, b := range basis.At(xi) {
			aug.Set(i, j+1, b)
		}
	}
	sqrtLam := math.Sqrt(g.Lambda)
	for r := 0; r < dRows; r++ {
		for c := 0; c < m; c++ {
			aug.Set(n+r, c+1, sqrtLam*d.At(r, c))
		}
	}
	rhs := mat.NewVecDense(n+dRows, nil)
	for i, yi := range y {
		rhs.SetVec(i, yi)
	}

	beta, err := linalg.LstSq(op, aug, rhs)
	if err != nil {
		return err
	}
	if err := errors.CheckNumericalStability(op, beta.RawVector().Data, 0); err != nil {
		return err
	}

	g.basis = basis
	g.intercept = beta.AtVec(0)
	g.coef = make([]float64, m)
	for j := range g.coef {
		g.coef[j] = beta.AtVec(j + 1)
	}
	g.edof = effectiveDOF(aug.Slice(0, n, 0, p), d, g.Lambda)
	g.SetFitted(n)
	return nil
}

// Predict evaluates the fitted smooth at x.
func (g *LinearGAM) Predict(x []float64) ([]float64, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("LinearGAM", "Predict")
	}
	out := make([]float64, len(x))
	for i, xi := range x {
		v := g.intercept
		for j, b := range g.basis.At(xi) {
			v += b * g.coef[j]
		}
		out[i] = v
	}
	return out, nil
}

// EffectiveDOF returns the trace of the hat matrix of the last fit, or NaN
// when it could not be computed.
func (g *LinearGAM) EffectiveDOF() float64 {
	return g.edof
}

// differenceOperator returns the (m-order)×m matrix of order-th differences.
func differenceOperator(m, order int) *mat.Dense {
	if order == 0 {
		d := mat.NewDense(m, m, nil)
		for i := 0; i < m; i++ {
			d.Set(i, i, 1)
		}
		return d
	}
	// binomial coefficients with alternating sign
	coeffs := []float64{1}
	for k := 0; k < order; k++ {
		next := make([]float64, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] -= c
			next[i+1] += c
		}
		coeffs = next
	}
	d := mat.NewDense(m-order, m, nil)
	for r := 0; r < m-order; r++ {
		for k, c := range coeffs {
			d.Set(r, r+k, c)
		}
	}
	return d
}

// effectiveDOF computes tr(X (XᵀX + λ·P)⁺ Xᵀ) with P acting on the spline block.
func effectiveDOF(x mat.Matrix, d *mat.Dense, lambda float64) float64 {
	_, p := x.Dims()
	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var dtd mat.Dense
	dtd.Mul(d.T(), d)
	m, _ := dtd.Dims()
	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			xtx.Set(r+1, c+1, xtx.At(r+1, c+1)+lambda*dtd.At(r, c))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(&xtx, mat.SVDFull) {
		return math.NaN()
	}
	rank := svd.Rank(linalg.RCond)
	var pinvXtx mat.Dense
	eye := mat.NewDiagDense(p, nil)
	for i := 0; i < p; i++ {
		eye.SetDiag(i, 1)
	}
	svd.SolveTo(&pinvXtx, eye, rank)

	// tr(X A Xᵀ) = tr(A XᵀX) with the unpenalised XᵀX
	var plain mat.Dense
	plain.Mul(x.T(), x)
	var prod mat.Dense
	prod.Mul(&pinvXtx, &plain)
	return mat.Trace(&prod)
}

func minMax(x []float64) (float64, float64) {
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
