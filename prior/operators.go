package prior

import "gonum.org/v1/gonum/mat"

// differenceCoeffs returns the order-th finite difference stencil, e.g.
// [1 -2 1] for order 2.
func differenceCoeffs(order int) []float64 {
	coeffs := []float64{1}
	for k := 0; k < order; k++ {
		next := make([]float64, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] -= c
			next[i+1] += c
		}
		coeffs = next
	}
	return coeffs
}

// DiffMatrix returns the order-th difference operator on n values. The plain
// operator has n−order rows. The periodic one has n rows and wraps around the
// end, making it circulant. It returns nil when the operator has no rows.
func DiffMatrix(n, order int, periodic bool) *mat.Dense {
	coeffs := differenceCoeffs(order)
	rows := n - order
	if periodic {
		rows = n
	}
	if rows <= 0 || n <= 0 {
		return nil
	}

	d := mat.NewDense(rows, n, nil)
	for r := 0; r < rows; r++ {
		for k, c := range coeffs {
			col := r + k
			if periodic {
				col %= n
			}
			d.Set(r, col, d.At(r, col)+c)
		}
	}
	return d
}

// SymmetryMatrix returns the operator whose rows are θ[center−i] − θ[center+i]
// for i = 1..min(center, n−1−center). A prior concentrated at zero on these
// rows pulls the values into mirror symmetry around index center. It returns
// nil when no pair exists.
func SymmetryMatrix(n, center int) *mat.Dense {
	if center < 0 || center >= n {
		return nil
	}
	pairs := center
	if right := n - 1 - center; right < pairs {
		pairs = right
	}
	if pairs <= 0 {
		return nil
	}

	s := mat.NewDense(pairs, n, nil)
	for i := 1; i <= pairs; i++ {
		s.Set(i-1, center-i, 1)
		s.Set(i-1, center+i, -1)
	}
	return s
}

// stack concatenates operators row-wise, skipping nil ones.
func stack(ops ...*mat.Dense) *mat.Dense {
	var rows, cols int
	for _, op := range ops {
		if op == nil {
			continue
		}
		r, c := op.Dims()
		rows += r
		cols = c
	}
	if rows == 0 {
		return nil
	}
	out := mat.NewDense(rows, cols, nil)
	at := 0
	for _, op := range ops {
		if op == nil {
			continue
		}
		r, _ := op.Dims()
		out.Slice(at, at+r, 0, cols).(*mat.Dense).Copy(op)
		at += r
	}
	return out
}
