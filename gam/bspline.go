package gam

import "github.com/YuminosukeSato/unifit/pkg/errors"

// BSplineBasis is a set of NSplines B-splines of the given degree on equally
// spaced knots covering [Lo, Hi]. Outside the range each basis function is
// extended linearly from the boundary.
type BSplineBasis struct {
	NSplines int
	Degree   int
	Lo, Hi   float64

	knots []float64
}

// NewBSplineBasis builds the extended knot vector for nSplines basis functions.
func NewBSplineBasis(nSplines, degree int, lo, hi float64) (*BSplineBasis, error) {
	if degree < 0 {
		return nil, errors.NewValueError("NewBSplineBasis", "spline order must be non-negative")
	}
	if nSplines <= degree {
		return nil, errors.NewValueError("NewBSplineBasis", "n_splines must exceed spline order")
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-0.5, hi+0.5
	}

	intervals := nSplines - degree
	h := (hi - lo) / float64(intervals)
	knots := make([]float64, nSplines+degree+1)
	for j := range knots {
		knots[j] = lo + float64(j-degree)*h
	}
	knots[degree] = lo
	knots[nSplines] = hi

	return &BSplineBasis{NSplines: nSplines, Degree: degree, Lo: lo, Hi: hi, knots: knots}, nil
}

// At evaluates all basis functions at x.
func (b *BSplineBasis) At(x float64) []float64 {
	switch {
	case x < b.Lo:
		return b.extrapolate(x, b.Lo, 1)
	case x > b.Hi:
		return b.extrapolate(x, b.Hi, -1)
	default:
		return b.deBoor(x)
	}
}

// extrapolate continues the basis linearly from the boundary edge using a
// one-sided difference taken inward (dir = +1 at Lo, -1 at Hi).
func (b *BSplineBasis) extrapolate(x, edge float64, dir float64) []float64 {
	step := dir * 1e-6 * (b.Hi - b.Lo)
	at := b.deBoor(edge)
	inner := b.deBoor(edge + step)
	out := make([]float64, len(at))
	for j := range at {
		slope := (inner[j] - at[j]) / step
		out[j] = at[j] + slope*(x-edge)
	}
	return out
}

// deBoor runs the Cox-de Boor recursion for x inside [Lo, Hi].
func (b *BSplineBasis) deBoor(x float64) []float64 {
	t := b.knots
	nk := len(t)
	N := make([]float64, nk-1)

	if x >= b.Hi {
		N[b.NSplines-1] = 1
	} else {
		for j := 0; j < nk-1; j++ {
			if x >= t[j] && x < t[j+1] {
				N[j] = 1
				break
			}
		}
	}

	for d := 1; d <= b.Degree; d++ {
		for j := 0; j < nk-1-d; j++ {
			var v float64
			if den := t[j+d] - t[j]; den > 0 {
				v += (x - t[j]) / den * N[j]
			}
			if den := t[j+d+1] - t[j+1]; den > 0 {
				v += (t[j+d+1] - x) / den * N[j+1]
			}
			N[j] = v
		}
	}
	return N[:b.NSplines]
}
