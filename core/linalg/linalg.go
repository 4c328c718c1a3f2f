// Package linalg collects the small dense solvers shared by the model packages.
package linalg

import (
	"sort"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RCond is the relative singular value cutoff used by LstSq.
const RCond = 1e-12

// LstSq returns the minimum-norm least squares solution of a·w ≈ b.
// Rank-deficient designs are handled by truncating singular values below
// RCond times the largest one.
func LstSq(op string, a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.NewModelError(op, "SVD factorization failed", errors.ErrSingularMatrix)
	}
	rank := svd.Rank(RCond)
	if rank == 0 {
		return nil, errors.NewModelError(op, "rank zero design", errors.ErrSingularMatrix)
	}
	var w mat.VecDense
	svd.SolveVecTo(&w, b, rank)
	return &w, nil
}

// SolveSPD solves a·x = b for a symmetric positive definite a using a
// Cholesky factorization.
func SolveSPD(op string, a *mat.SymDense, b mat.Vector) (*mat.VecDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, errors.NewModelError(op, "matrix is not positive definite", errors.ErrSingularMatrix)
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, b); err != nil {
		return nil, errors.NewModelError(op, "cholesky solve", err)
	}
	return &x, nil
}

// Interp evaluates the piecewise linear interpolant through (xp, fp) at x.
// xp must be ascending. Values outside [xp[0], xp[len-1]] take the nearest
// end value.
func Interp(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))
	n := len(xp)
	for i, xi := range x {
		switch {
		case n == 0:
			out[i] = 0
		case xi <= xp[0]:
			out[i] = fp[0]
		case xi >= xp[n-1]:
			out[i] = fp[n-1]
		default:
			j := sort.SearchFloat64s(xp, xi)
			if xp[j] == xi {
				out[i] = fp[j]
				continue
			}
			x0, x1 := xp[j-1], xp[j]
			t := (xi - x0) / (x1 - x0)
			out[i] = fp[j-1] + t*(fp[j]-fp[j-1])
		}
	}
	return out
}

// Argsort returns the indices that sort x ascending. Ties keep input order.
func Argsort(x []float64) []int {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	return idx
}
