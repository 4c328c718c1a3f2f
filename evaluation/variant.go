package evaluation

import (
	"context"

	"github.com/YuminosukeSato/unifit/core/model"
)

// Variant is one named model configuration compared by the evaluator. It is
// the only capability the harness needs from a model family.
type Variant interface {
	// Name is the row label in the performance table. It must be unique
	// within one evaluation.
	Name() string

	// FitPredict fits a fresh model on (xTrain, yTrain) and returns its
	// predictions at xEval. Implementations must not retain state between
	// calls, as folds may be fitted concurrently.
	FitPredict(ctx context.Context, xTrain, yTrain, xEval []float64) ([]float64, error)
}

// Titler is implemented by variants that carry a longer display title for
// diagnostic panels.
type Titler interface {
	Title() string
}

// VariantFunc adapts a plain function to the Variant interface.
type VariantFunc struct {
	VariantName string
	Fn          func(ctx context.Context, xTrain, yTrain, xEval []float64) ([]float64, error)
}

// Name implements Variant.
func (v VariantFunc) Name() string {
	return v.VariantName
}

// FitPredict implements Variant.
func (v VariantFunc) FitPredict(ctx context.Context, xTrain, yTrain, xEval []float64) ([]float64, error) {
	return v.Fn(ctx, xTrain, yTrain, xEval)
}

// contextFitter is implemented by models whose fit observes cancellation.
type contextFitter interface {
	FitContext(ctx context.Context, x, y []float64) error
}

// fitPredicter is implemented by models that treat in-sample prediction specially.
type fitPredicter interface {
	FitPredict(x, y, xEval []float64) ([]float64, error)
}

// regressorVariant builds a new model.Regressor for every call.
type regressorVariant struct {
	name  string
	title string
	build func() model.Regressor
}

// NewRegressorVariant wraps a model constructor as a Variant.
func NewRegressorVariant(name, title string, build func() model.Regressor) Variant {
	return &regressorVariant{name: name, title: title, build: build}
}

func (v *regressorVariant) Name() string {
	return v.name
}

func (v *regressorVariant) Title() string {
	if v.title == "" {
		return v.name
	}
	return v.title
}

func (v *regressorVariant) FitPredict(ctx context.Context, xTrain, yTrain, xEval []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := v.build()

	switch fitter := m.(type) {
	case fitPredicter:
		return fitter.FitPredict(xTrain, yTrain, xEval)
	case contextFitter:
		if err := fitter.FitContext(ctx, xTrain, yTrain); err != nil {
			return nil, err
		}
		return m.Predict(xEval)
	default:
		return model.FitPredict(m, xTrain, yTrain, xEval)
	}
}
