// Package ensemble provides a bagged random forest of CART regression trees
// on a single feature.
//
// Each tree draws its bootstrap sample from its own generator seeded from the
// forest seed and the tree index, so a fitted forest is identical regardless
// of how many trees are grown concurrently.
package ensemble

import (
	"context"
	"math/rand/v2"

	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/core/parallel"
	"github.com/YuminosukeSato/unifit/pkg/errors"
)

// Default hyperparameters.
const (
	DefaultNEstimators = 100
	DefaultSeed        = 42
)

// RandomForestRegressor averages the predictions of bootstrapped regression trees.
type RandomForestRegressor struct {
	model.BaseEstimator

	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Bootstrap       bool
	Seed            int64
	NJobs           int // <= 0 means one worker per CPU core

	trees []*RegressionTree
}

// Option configures a RandomForestRegressor
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees
func WithNEstimators(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.NEstimators = n
	}
}

// WithMaxDepth limits tree depth; 0 grows trees until leaves are pure
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestRegressor) {
		rf.MaxDepth = depth
	}
}

// WithMinSamplesLeaf sets the minimum number of samples in a leaf
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.MinSamplesLeaf = n
	}
}

// WithBootstrap toggles bootstrap sampling
func WithBootstrap(bootstrap bool) Option {
	return func(rf *RandomForestRegressor) {
		rf.Bootstrap = bootstrap
	}
}

// WithSeed sets the random seed
func WithSeed(seed int64) Option {
	return func(rf *RandomForestRegressor) {
		rf.Seed = seed
	}
}

// WithNJobs sets the number of trees grown concurrently
func WithNJobs(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.NJobs = n
	}
}

// NewRandomForestRegressor creates a forest with the given options applied to
// the defaults (100 trees, seed 42, bootstrap, fully grown trees).
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     DefaultNEstimators,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            DefaultSeed,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit grows the forest.
func (rf *RandomForestRegressor) Fit(x, y []float64) error {
	return rf.FitContext(context.Background(), x, y)
}

// FitContext grows the forest, stopping early when ctx is cancelled.
func (rf *RandomForestRegressor) FitContext(ctx context.Context, x, y []float64) error {
	if err := model.CheckXY("RandomForestRegressor.Fit", x, y); err != nil {
		return err
	}
	if rf.NEstimators < 1 {
		return errors.NewValueError("RandomForestRegressor.Fit", "n_estimators must be positive")
	}

	n := len(x)
	trees := make([]*RegressionTree, rf.NEstimators)
	err := parallel.ForEach(ctx, rf.NEstimators, parallel.Workers(rf.NJobs, rf.NEstimators),
		func(_ context.Context, i int) error {
			rng := rand.New(rand.NewPCG(uint64(rf.Seed), uint64(i)))

			sample := make([]int, n)
			for j := range sample {
				if rf.Bootstrap {
					sample[j] = rng.IntN(n)
				} else {
					sample[j] = j
				}
			}

			tree := &RegressionTree{
				MaxDepth:        rf.MaxDepth,
				MinSamplesSplit: rf.MinSamplesSplit,
				MinSamplesLeaf:  rf.MinSamplesLeaf,
			}
			tree.fitSorted(x, y, sortByX(x, sample))
			trees[i] = tree
			return nil
		})
	if err != nil {
		return err
	}

	rf.trees = trees
	rf.SetFitted(n)
	return nil
}

// Predict averages the tree predictions.
func (rf *RandomForestRegressor) Predict(x []float64) ([]float64, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	out := make([]float64, len(x))
	for _, tree := range rf.trees {
		for i, xi := range x {
			out[i] += tree.predictOne(xi)
		}
	}
	k := float64(len(rf.trees))
	for i := range out {
		out[i] /= k
	}
	return out, nil
}

// NTrees returns the number of fitted trees.
func (rf *RandomForestRegressor) NTrees() int {
	return len(rf.trees)
}
