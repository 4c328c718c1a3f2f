package gp

import (
	"math"
	"sort"
	"sync"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Default prior settings.
const (
	DefaultGridStart = 0.0
	DefaultGridStop  = 60.0
	DefaultGridStep  = 0.1
	DefaultCorrLen   = 10.0
	DefaultSigma     = 700.0
	DefaultAlpha     = 1.0
	DefaultEnergy    = 0.9
)

// Grid returns start, start+step, ... for values below stop.
func Grid(start, stop, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, errors.NewValueError("gp.Grid", "step must be positive")
	}
	if stop <= start {
		return nil, errors.NewValueError("gp.Grid", "stop must exceed start")
	}
	n := int(math.Ceil((stop-start)/step - 1e-9))
	if n < 2 {
		return nil, errors.NewValueError("gp.Grid", "grid needs at least two points")
	}
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = start + float64(i)*step
	}
	return grid, nil
}

// Prior is a Gaussian-process prior represented by the leading eigenvectors of
// the kernel covariance on a fixed grid. Each retained eigenvector is scaled by
// the square root of its eigenvalue, so unit-variance weights on the basis
// reproduce the truncated covariance.
//
// The basis depends only on the kernel and the grid. It is computed once and
// shared by every fit that uses the same Prior.
type Prior struct {
	Kernel Kernel
	Grid   []float64
	Energy float64

	once    sync.Once
	basis   *mat.Dense
	eigvals []float64
	err     error
}

// NewPrior creates a prior that keeps enough eigenpairs to explain the given
// fraction of the total variance.
func NewPrior(k Kernel, grid []float64, energy float64) *Prior {
	return &Prior{Kernel: k, Grid: grid, Energy: energy}
}

// Basis returns the len(Grid)×m matrix of scaled eigenvectors.
func (p *Prior) Basis() (*mat.Dense, error) {
	p.once.Do(func() {
		p.basis, p.eigvals, p.err = p.compute()
	})
	return p.basis, p.err
}

// NBasis returns the number of retained eigenpairs, or 0 if the basis could
// not be computed.
func (p *Prior) NBasis() int {
	b, err := p.Basis()
	if err != nil {
		return 0
	}
	_, m := b.Dims()
	return m
}

// Eigenvalues returns the retained eigenvalues in descending order.
func (p *Prior) Eigenvalues() []float64 {
	if _, err := p.Basis(); err != nil {
		return nil
	}
	return append([]float64(nil), p.eigvals...)
}

func (p *Prior) compute() (*mat.Dense, []float64, error) {
	const op = "gp.Prior"
	if p.Kernel == nil {
		return nil, nil, errors.NewValueError(op, "kernel is required")
	}
	if len(p.Grid) < 2 || !sort.Float64sAreSorted(p.Grid) {
		return nil, nil, errors.NewValueError(op, "grid must hold at least two ascending points")
	}
	if p.Energy <= 0 || p.Energy > 1 {
		return nil, nil, errors.NewValueError(op, "energy must be in (0, 1]")
	}

	var es mat.EigenSym
	if ok := es.Factorize(CovMatrix(p.Kernel, p.Grid), true); !ok {
		return nil, nil, errors.NewModelError(op, "eigendecomposition failed", errors.ErrSingularMatrix)
	}
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	// Values are ascending; walk from the largest.
	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return nil, nil, errors.NewModelError(op, "kernel covariance has no positive eigenvalues", errors.ErrSingularMatrix)
	}

	n := len(values)
	var kept []int
	var cum float64
	for i := n - 1; i >= 0 && values[i] > 0; i-- {
		kept = append(kept, i)
		cum += values[i]
		if cum/total >= p.Energy {
			break
		}
	}

	g := len(p.Grid)
	basis := mat.NewDense(g, len(kept), nil)
	eigvals := make([]float64, len(kept))
	for c, idx := range kept {
		scale := math.Sqrt(values[idx])
		eigvals[c] = values[idx]
		for r := 0; r < g; r++ {
			basis.Set(r, c, scale*vectors.At(r, idx))
		}
	}
	return basis, eigvals, nil
}

// Design evaluates the basis at x by linear interpolation between grid points.
// Inputs outside the grid take the value at the nearest end.
func (p *Prior) Design(x []float64) (*mat.Dense, error) {
	basis, err := p.Basis()
	if err != nil {
		return nil, err
	}
	_, m := basis.Dims()
	grid := p.Grid
	last := len(grid) - 1

	design := mat.NewDense(len(x), m, nil)
	for i, xi := range x {
		var j0, j1 int
		var w float64
		switch {
		case xi <= grid[0]:
			j0, j1 = 0, 0
		case xi >= grid[last]:
			j0, j1 = last, last
		default:
			j1 = sort.SearchFloat64s(grid, xi)
			j0 = j1 - 1
			w = (xi - grid[j0]) / (grid[j1] - grid[j0])
		}
		for c := 0; c < m; c++ {
			design.Set(i, c, (1-w)*basis.At(j0, c)+w*basis.At(j1, c))
		}
	}
	return design, nil
}
