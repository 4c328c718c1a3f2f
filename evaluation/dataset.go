package evaluation

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/unifit/pkg/errors"
)

// Dataset is an ordered univariate sample of (x, y) pairs. The evaluator never
// modifies it.
type Dataset struct {
	X []float64
	Y []float64
}

// NewDataset pairs x and y without copying.
func NewDataset(x, y []float64) Dataset {
	return Dataset{X: x, Y: y}
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.X)
}

// Validate checks that the dataset is non-empty, aligned and finite.
func (d Dataset) Validate() error {
	if len(d.X) == 0 {
		return errors.NewConfigurationError("dataset", "must not be empty", 0)
	}
	if len(d.X) != len(d.Y) {
		return errors.NewConfigurationError("dataset",
			fmt.Sprintf("x has %d values but y has %d", len(d.X), len(d.Y)), len(d.Y))
	}
	for i := range d.X {
		if math.IsNaN(d.X[i]) || math.IsInf(d.X[i], 0) || math.IsNaN(d.Y[i]) || math.IsInf(d.Y[i], 0) {
			return errors.NewConfigurationError("dataset",
				fmt.Sprintf("non-finite value at row %d", i), [2]float64{d.X[i], d.Y[i]})
		}
	}
	return nil
}
