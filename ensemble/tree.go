package ensemble

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/pkg/errors"
)

// node is a binary split x <= Threshold, or a leaf when Left is nil.
type node struct {
	Threshold float64
	Value     float64
	Left      *node
	Right     *node
}

// RegressionTree is a CART regression tree on a single feature with the
// squared-error criterion.
type RegressionTree struct {
	model.BaseEstimator

	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int

	root   *node
	leaves int
}

// NewRegressionTree returns a fully grown tree (no depth limit, leaves of one sample).
func NewRegressionTree() *RegressionTree {
	return &RegressionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// Fit grows the tree on (x, y).
func (t *RegressionTree) Fit(x, y []float64) error {
	if err := model.CheckXY("RegressionTree.Fit", x, y); err != nil {
		return err
	}
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	t.fitSorted(x, y, sortByX(x, order))
	return nil
}

// fitSorted grows the tree from sample indices already sorted by x. Indices
// may repeat (bootstrap samples).
func (t *RegressionTree) fitSorted(x, y []float64, sorted []int) {
	t.leaves = 0
	t.root = t.grow(x, y, sorted, 0)
	t.SetFitted(len(sorted))
}

func sortByX(x []float64, idx []int) []int {
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	return idx
}

func (t *RegressionTree) grow(x, y []float64, idx []int, depth int) *node {
	n := len(idx)
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	leaf := &node{Value: sum / float64(n)}

	minSplit := t.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	minLeaf := t.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}
	if n < minSplit || n < 2*minLeaf || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		t.leaves++
		return leaf
	}

	split, threshold, ok := bestSplit(x, y, idx, minLeaf)
	if !ok {
		t.leaves++
		return leaf
	}

	leaf.Threshold = threshold
	leaf.Left = t.grow(x, y, idx[:split], depth+1)
	leaf.Right = t.grow(x, y, idx[split:], depth+1)
	return leaf
}

// bestSplit scans the x-sorted samples for the cut that minimises the summed
// squared error of both children. It returns the cut position, the midpoint
// threshold, and false when the node is pure or every x is identical.
func bestSplit(x, y []float64, idx []int, minLeaf int) (int, float64, bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	if totalSq-total*total/float64(n) <= 1e-12*(1+totalSq) {
		return 0, 0, false
	}

	bestPos := -1
	bestSSE := math.Inf(1)
	var left, leftSq float64
	for pos := 1; pos < n; pos++ {
		yi := y[idx[pos-1]]
		left += yi
		leftSq += yi * yi

		if pos < minLeaf || n-pos < minLeaf {
			continue
		}
		if x[idx[pos-1]] == x[idx[pos]] {
			continue
		}
		right := total - left
		rightSq := totalSq - leftSq
		sse := leftSq - left*left/float64(pos) + rightSq - right*right/float64(n-pos)
		if sse < bestSSE {
			bestSSE = sse
			bestPos = pos
		}
	}
	if bestPos < 0 {
		return 0, 0, false
	}
	threshold := (x[idx[bestPos-1]] + x[idx[bestPos]]) / 2
	return bestPos, threshold, true
}

// Predict walks each input down the tree.
func (t *RegressionTree) Predict(x []float64) ([]float64, error) {
	if !t.IsFitted() || t.root == nil {
		return nil, errors.NewNotFittedError("RegressionTree", "Predict")
	}
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = t.predictOne(xi)
	}
	return out, nil
}

func (t *RegressionTree) predictOne(xi float64) float64 {
	nd := t.root
	for nd.Left != nil {
		if xi <= nd.Threshold {
			nd = nd.Left
		} else {
			nd = nd.Right
		}
	}
	return nd.Value
}

// NLeaves returns the number of leaves of the fitted tree.
func (t *RegressionTree) NLeaves() int {
	return t.leaves
}
