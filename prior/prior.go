// Package prior implements smoothing models with Gaussian priors on
// differences of the fitted values.
//
// The model keeps one latent value per training point, ordered by x. The
// observations are the latent values plus Gaussian noise, and a prior
// B·θ ~ N(0, diag(PriorVariance)) expresses smoothness, periodicity or
// symmetry through the operator B. The fit is the posterior mean of θ.
package prior

import (
	"fmt"
	"math"
	"strings"

	"github.com/YuminosukeSato/unifit/core/linalg"
	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Structure selects the prior operator.
type Structure int

const (
	// Smooth penalises second differences.
	Smooth Structure = iota
	// Periodic penalises second differences that wrap around the ends.
	Periodic
	// PeriodicSymmetric adds mirror symmetry around SymmetryCenter to Periodic.
	PeriodicSymmetric
)

// String returns the configuration name of the structure.
func (s Structure) String() string {
	switch s {
	case Smooth:
		return "smooth"
	case Periodic:
		return "periodic"
	case PeriodicSymmetric:
		return "periodic_symmetric"
	default:
		return fmt.Sprintf("Structure(%d)", int(s))
	}
}

// ParseStructure maps a configuration name to a Structure.
func ParseStructure(name string) (Structure, error) {
	switch strings.ToLower(name) {
	case "smooth":
		return Smooth, nil
	case "periodic":
		return Periodic, nil
	case "periodic_symmetric", "both":
		return PeriodicSymmetric, nil
	default:
		return Smooth, errors.NewValueError("prior.ParseStructure", fmt.Sprintf("unknown structure %q", name))
	}
}

// Defaults.
const (
	DefaultOrder         = 2
	DefaultPriorVariance = 0.01
	DefaultObsVariance   = 0.1
)

// DefaultSymmetryCenter is −π/4.
var DefaultSymmetryCenter = -math.Pi / 4

// Model is a difference-prior smoother.
type Model struct {
	model.BaseEstimator

	Structure      Structure
	Order          int
	PriorVariance  float64
	ObsVariance    float64
	SymmetryCenter float64

	xs    []float64
	theta []float64
	order []int
}

// Option configures a Model
type Option func(*Model)

// WithOrder sets the difference order
func WithOrder(order int) Option {
	return func(m *Model) {
		m.Order = order
	}
}

// WithPriorVariance sets the variance of every prior row
func WithPriorVariance(v float64) Option {
	return func(m *Model) {
		m.PriorVariance = v
	}
}

// WithObsVariance sets the observation noise variance
func WithObsVariance(v float64) Option {
	return func(m *Model) {
		m.ObsVariance = v
	}
}

// WithSymmetryCenter sets the x value the symmetric prior mirrors around
func WithSymmetryCenter(c float64) Option {
	return func(m *Model) {
		m.SymmetryCenter = c
	}
}

// New creates a model with the given structure.
func New(s Structure, opts ...Option) *Model {
	m := &Model{
		Structure:      s,
		Order:          DefaultOrder,
		PriorVariance:  DefaultPriorVariance,
		ObsVariance:    DefaultObsVariance,
		SymmetryCenter: DefaultSymmetryCenter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Operator builds B for n training points sorted by x.
func (m *Model) Operator(xs []float64) (*mat.Dense, error) {
	n := len(xs)
	switch m.Structure {
	case Smooth:
		return DiffMatrix(n, m.Order, false), nil
	case Periodic:
		return DiffMatrix(n, m.Order, true), nil
	case PeriodicSymmetric:
		center := -1
		for i, x := range xs {
			if x >= m.SymmetryCenter {
				center = i
				break
			}
		}
		if center < 0 {
			return nil, errors.NewValueError("prior.Model.Operator",
				fmt.Sprintf("no training input at or above the symmetry center %g", m.SymmetryCenter))
		}
		return stack(DiffMatrix(n, m.Order, true), SymmetryMatrix(n, center)), nil
	default:
		return nil, errors.NewValueError("prior.Model.Operator", fmt.Sprintf("unknown structure %v", m.Structure))
	}
}

// Fit sorts the training points by x and solves
//
//	(I/σ² + Bᵀ·Λ⁻¹·B)·θ = y/σ²
//
// for the posterior mean θ.
func (m *Model) Fit(x, y []float64) error {
	const op = "prior.Model.Fit"
	if err := model.CheckXY(op, x, y); err != nil {
		return err
	}
	if m.PriorVariance <= 0 || m.ObsVariance <= 0 {
		return errors.NewValueError(op, "variances must be positive")
	}
	if m.Order < 1 {
		return errors.NewValueError(op, "difference order must be at least 1")
	}

	order := linalg.Argsort(x)
	n := len(x)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, j := range order {
		xs[i] = x[j]
		ys[i] = y[j]
	}

	b, err := m.Operator(xs)
	if err != nil {
		return err
	}

	obsPrec := 1 / m.ObsVariance
	a := mat.NewSymDense(n, nil)
	if b != nil {
		a.SymOuterK(1/m.PriorVariance, b.T())
	}
	for i := 0; i < n; i++ {
		a.SetSym(i, i, a.At(i, i)+obsPrec)
	}
	rhs := mat.NewVecDense(n, nil)
	for i, v := range ys {
		rhs.SetVec(i, v*obsPrec)
	}

	theta, err := linalg.SolveSPD(op, a, rhs)
	if err != nil {
		return err
	}
	if err := errors.CheckNumericalStability(op, theta.RawVector().Data, 0); err != nil {
		return err
	}

	m.xs = xs
	m.order = order
	m.theta = append([]float64(nil), theta.RawVector().Data...)
	m.SetFitted(n)
	return nil
}

// Predict linearly interpolates the posterior mean over the sorted training
// inputs. At a training input the fitted value is returned; duplicated inputs
// resolve to the first of them.
func (m *Model) Predict(x []float64) ([]float64, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("prior.Model", "Predict")
	}
	return linalg.Interp(x, m.xs, m.theta), nil
}

// FittedValues returns the posterior mean at each training input, in the
// order the inputs were passed to Fit.
func (m *Model) FittedValues() []float64 {
	out := make([]float64, len(m.theta))
	for i, j := range m.order {
		out[j] = m.theta[i]
	}
	return out
}

// FitPredict fits on (x, y) and predicts at xEval. When xEval is the training
// input itself each point gets its own posterior mean, so duplicated inputs
// keep distinct fitted values.
func (m *Model) FitPredict(x, y, xEval []float64) ([]float64, error) {
	if err := m.Fit(x, y); err != nil {
		return nil, err
	}
	if sameInputs(x, xEval) {
		return m.FittedValues(), nil
	}
	return m.Predict(xEval)
}

func sameInputs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
