// Package modelselection provides the k-fold partitioning used by the
// cross-validated evaluator.
package modelselection

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/unifit/pkg/errors"
)

// Fold is one train/held-out split. Index is 1-based.
type Fold struct {
	Index int
	Train []int
	Test  []int
}

// KFold implements k-fold cross-validation splitting
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a shuffled k-fold splitter with the given seed.
func NewKFold(nSplits int, seed int64) *KFold {
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    true,
		RandomSeed: seed,
	}
}

// Validate checks that the splitter can partition nSamples indices.
func (kf *KFold) Validate(nSamples int) error {
	if kf.NSplits < 2 {
		return errors.NewConfigurationError("folds", "must be at least 2", kf.NSplits)
	}
	if kf.NSplits > nSamples {
		return errors.NewConfigurationError("folds",
			fmt.Sprintf("cannot exceed the number of samples (%d)", nSamples), kf.NSplits)
	}
	return nil
}

// Split partitions the indices 0..nSamples-1 into NSplits folds. The first
// nSamples%NSplits folds hold out one extra sample. Train and Test are sorted
// ascending, so only the membership of each fold depends on the seed.
func (kf *KFold) Split(nSamples int) ([]Fold, error) {
	if err := kf.Validate(nSamples); err != nil {
		return nil, err
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		seed := uint64(kf.RandomSeed)
		r := rand.New(rand.NewPCG(seed, seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	held := make([]bool, nSamples)
	current := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])
		sort.Ints(test)

		for _, idx := range test {
			held[idx] = true
		}
		train := make([]int, 0, nSamples-testSize)
		for j := 0; j < nSamples; j++ {
			if !held[j] {
				train = append(train, j)
			}
		}
		for _, idx := range test {
			held[idx] = false
		}

		folds[i] = Fold{Index: i + 1, Train: train, Test: test}
		current += testSize
	}

	return folds, nil
}

// Take returns values[idx[0]], values[idx[1]], ...
func Take(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
