package gp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kernel is a stationary covariance function of the distance between two inputs.
type Kernel interface {
	// Cov returns the covariance of two inputs at distance d.
	Cov(d float64) float64
	// Name is a short identifier such as "exp_squared".
	Name() string
}

var (
	expSquared        *ExpSquared
	ratQuad           *RationalQuadratic
	ornsteinUhlenbeck *OrnsteinUhlenbeck
	matern32          *Matern32
	_                 Kernel = expSquared        // Check that ExpSquared respects the Kernel interface.
	_                 Kernel = ratQuad           // Check that RationalQuadratic respects the Kernel interface.
	_                 Kernel = ornsteinUhlenbeck // Check that OrnsteinUhlenbeck respects the Kernel interface.
	_                 Kernel = matern32          // Check that Matern32 respects the Kernel interface.
)

// ExpSquared is σ²·exp(−d²/(2ℓ²)).
type ExpSquared struct {
	sigma   float64
	corrLen float64
}

func NewExpSquared(sigma, corrLen float64) *ExpSquared {
	return &ExpSquared{
		sigma:   sigma,
		corrLen: corrLen,
	}
}

func (k *ExpSquared) Cov(d float64) float64 {
	r := d / k.corrLen
	return k.sigma * k.sigma * math.Exp(-0.5*r*r)
}

func (k *ExpSquared) Name() string {
	return "exp_squared"
}

// RationalQuadratic is σ²·(1 + d²/(2αℓ²))^(−α).
type RationalQuadratic struct {
	sigma   float64
	corrLen float64
	alpha   float64
}

func NewRationalQuadratic(sigma, corrLen, alpha float64) *RationalQuadratic {
	return &RationalQuadratic{
		sigma:   sigma,
		corrLen: corrLen,
		alpha:   alpha,
	}
}

func (k *RationalQuadratic) Cov(d float64) float64 {
	r := d / k.corrLen
	return k.sigma * k.sigma * math.Pow(1+r*r/(2*k.alpha), -k.alpha)
}

func (k *RationalQuadratic) Name() string {
	return "rational_quadratic"
}

// OrnsteinUhlenbeck is σ²·exp(−|d|/ℓ), the Matérn kernel with ν = 1/2.
type OrnsteinUhlenbeck struct {
	sigma   float64
	corrLen float64
}

func NewOrnsteinUhlenbeck(sigma, corrLen float64) *OrnsteinUhlenbeck {
	return &OrnsteinUhlenbeck{
		sigma:   sigma,
		corrLen: corrLen,
	}
}

func (k *OrnsteinUhlenbeck) Cov(d float64) float64 {
	return k.sigma * k.sigma * math.Exp(-math.Abs(d)/k.corrLen)
}

func (k *OrnsteinUhlenbeck) Name() string {
	return "ornstein_uhlenbeck"
}

// Matern32 is σ²·(1 + √3|d|/ℓ)·exp(−√3|d|/ℓ).
type Matern32 struct {
	sigma   float64
	corrLen float64
}

func NewMatern32(sigma, corrLen float64) *Matern32 {
	return &Matern32{
		sigma:   sigma,
		corrLen: corrLen,
	}
}

func (k *Matern32) Cov(d float64) float64 {
	r := math.Sqrt(3) * math.Abs(d) / k.corrLen
	return k.sigma * k.sigma * (1 + r) * math.Exp(-r)
}

func (k *Matern32) Name() string {
	return "matern32"
}

// CovMatrix evaluates k on every pair of points.
func CovMatrix(k Kernel, points []float64) *mat.SymDense {
	n := len(points)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, k.Cov(points[i]-points[j]))
		}
	}
	return cov
}
