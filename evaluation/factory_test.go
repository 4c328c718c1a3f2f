package evaluation

import (
	"context"
	"math"
	"testing"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineData(n int) ([]float64, []float64) {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 6 * float64(i) / float64(n-1)
		y[i] = math.Sin(x[i]) + 0.05*math.Cos(7*float64(i))
	}
	return x, y
}

func TestNewVariantEachKind(t *testing.T) {
	x, y := sineData(40)
	cfgs := []VariantConfig{
		{Name: "ols", Kind: KindLinear},
		{Name: "forest", Kind: KindRandomForest, RandomForest: &RandomForestConfig{NEstimators: 5}},
		{Name: "gam", Kind: KindGAM},
		{Name: "om", Kind: KindGP, GP: &GPConfig{Kernel: "matern32", GridStop: 10}},
		{Name: "smooth", Kind: KindDifferencePrior, DifferencePrior: &DifferencePriorConfig{Structure: "smooth"}},
	}

	for _, cfg := range cfgs {
		t.Run(cfg.Name, func(t *testing.T) {
			v, err := NewVariant(cfg)
			require.NoError(t, err)
			assert.Equal(t, cfg.Name, v.Name())

			pred, err := v.FitPredict(context.Background(), x, y, x[:5])
			require.NoError(t, err)
			require.Len(t, pred, 5)
			for _, p := range pred {
				assert.False(t, math.IsNaN(p))
			}
		})
	}
}

func TestNewVariantTitles(t *testing.T) {
	tests := []struct {
		cfg  VariantConfig
		want string
	}{
		{VariantConfig{Name: "a", Kind: KindLinear}, "Linear Regression"},
		{VariantConfig{Name: "a", Kind: KindLinear, Title: "OLS"}, "OLS"},
		{VariantConfig{Name: "a", Kind: KindGP, GP: &GPConfig{Kernel: "exp_squared"}}, "Exponential Squared"},
		{VariantConfig{Name: "a", Kind: KindGP, GP: &GPConfig{Kernel: "ornstein_uhlenbeck"}}, "Ornstein-Uhlenbeck"},
		{VariantConfig{Name: "a", Kind: KindDifferencePrior, DifferencePrior: &DifferencePriorConfig{Structure: "both"}}, "Smooth + Periodic + Symmetric"},
	}
	for _, tt := range tests {
		v, err := NewVariant(tt.cfg)
		require.NoError(t, err)
		titler, ok := v.(Titler)
		require.True(t, ok)
		assert.Equal(t, tt.want, titler.Title())
	}
}

func TestNewVariantErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  VariantConfig
	}{
		{"no name", VariantConfig{Kind: KindLinear}},
		{"unknown kind", VariantConfig{Name: "a", Kind: "svm"}},
		{"gp without block", VariantConfig{Name: "a", Kind: KindGP}},
		{"unknown kernel", VariantConfig{Name: "a", Kind: KindGP, GP: &GPConfig{Kernel: "cosine"}}},
		{"prior without block", VariantConfig{Name: "a", Kind: KindDifferencePrior}},
		{"unknown structure", VariantConfig{Name: "a", Kind: KindDifferencePrior, DifferencePrior: &DifferencePriorConfig{Structure: "spiky"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVariant(tt.cfg)
			var cfgErr *errors.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestSuiteConfigs(t *testing.T) {
	tests := map[string][]string{
		SuiteLinear: {"Linear Regression"},
		SuiteForest: {"Random Forest"},
		SuiteGAM:    {"Frequentist Penalized Regression"},
		SuiteGP:     {"exp square", "rat quad", "orn uhl"},
		SuitePrior:  {"smooth", "periodic", "both"},
	}
	for name, want := range tests {
		cfgs, err := SuiteConfigs(name)
		require.NoError(t, err)
		var got []string
		for _, c := range cfgs {
			got = append(got, c.Name)
		}
		assert.Equal(t, want, got, name)
	}

	all, err := SuiteConfigs(SuiteAll)
	require.NoError(t, err)
	assert.Len(t, all, 9)
	require.NoError(t, Config{Folds: 2, Variants: all}.Validate())

	_, err = SuiteConfigs("boosting")
	assert.Error(t, err)
}

func TestEvaluateAllSuites(t *testing.T) {
	if testing.Short() {
		t.Skip("fits every model family")
	}
	x, y := sineData(45)
	variants, err := NewVariants(AllSuites())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Folds = 3
	cfg.Parallelism = 4
	ev, _ := newTestEvaluator(t, cfg)

	table, diags, err := ev.Evaluate(context.Background(), NewDataset(x, y), variants)
	require.NoError(t, err)
	require.Len(t, table.Rows, 9)
	assert.Len(t, diags, 27)

	for i, row := range table.Rows {
		assert.Equal(t, variants[i].Name(), row.Model)
		assert.False(t, math.IsNaN(row.MSE), row.Model)
		// mean of fold RMSEs never exceeds the root of the mean MSE
		assert.LessOrEqual(t, row.RMSE, math.Sqrt(row.MSE)+1e-12, row.Model)
	}

	// a straight line cannot follow a full period of a sine
	ols, _ := table.Row("Linear Regression")
	forest, _ := table.Row("Random Forest")
	assert.Less(t, forest.MSE, ols.MSE)
	assert.Greater(t, forest.R2, ols.R2)

	d, ok := diags.Get(2, "exp square")
	require.True(t, ok)
	assert.Equal(t, "Exponential Squared (Fold 2)", d.PanelTitle())
}

func TestEvaluateAllSuitesConstantTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("fits every model family")
	}
	errors.SetWarningHandler(func(error) {})
	x := make([]float64, 20)
	y := make([]float64, 20)
	for i := range x {
		x[i] = float64(i)
		y[i] = 3
	}
	variants, err := NewVariants(AllSuites())
	require.NoError(t, err)

	ev, _ := newTestEvaluator(t, DefaultConfig())
	table, _, err := ev.Evaluate(context.Background(), NewDataset(x, y), variants)
	require.NoError(t, err)
	require.Len(t, table.Rows, 9)
	for _, row := range table.Rows {
		assert.True(t, math.IsNaN(row.R2), row.Model)
		assert.InDelta(t, 0.0, row.MSE, 1e-3, row.Model)
	}
}

func TestEvaluateAllSuitesSingleSampleFolds(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	variants, err := NewVariants(AllSuites())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Folds = 2
	ev, _ := newTestEvaluator(t, cfg)

	// every training subset holds one sample
	table, diags, err := ev.Evaluate(context.Background(), NewDataset([]float64{1, 2}, []float64{1, 3}), variants)
	require.NoError(t, err)
	require.Len(t, table.Rows, 9)
	assert.Len(t, diags, 18)
	for _, row := range table.Rows {
		assert.True(t, math.IsNaN(row.R2), row.Model)
		assert.False(t, math.IsNaN(row.MSE), row.Model)
	}
}
