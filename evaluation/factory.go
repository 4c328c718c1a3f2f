package evaluation

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/unifit/core/model"
	"github.com/YuminosukeSato/unifit/ensemble"
	"github.com/YuminosukeSato/unifit/gam"
	"github.com/YuminosukeSato/unifit/gp"
	"github.com/YuminosukeSato/unifit/linear"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/prior"
)

// NewVariant builds the Variant described by cfg.
func NewVariant(cfg VariantConfig) (Variant, error) {
	if cfg.Name == "" {
		return nil, errors.NewConfigurationError("name", "variant name is required", cfg.Name)
	}
	switch cfg.Kind {
	case KindLinear:
		return NewRegressorVariant(cfg.Name, titleOr(cfg, "Linear Regression"), func() model.Regressor {
			return linear.NewLinearRegression()
		}), nil
	case KindRandomForest:
		return newForestVariant(cfg), nil
	case KindGAM:
		return newGAMVariant(cfg), nil
	case KindGP:
		return newGPVariant(cfg)
	case KindDifferencePrior:
		return newPriorVariant(cfg)
	default:
		return nil, errors.NewConfigurationError("kind", "unknown variant kind", string(cfg.Kind))
	}
}

// NewVariants builds every variant of cfgs in order.
func NewVariants(cfgs []VariantConfig) ([]Variant, error) {
	variants := make([]Variant, 0, len(cfgs))
	for _, c := range cfgs {
		v, err := NewVariant(c)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func titleOr(cfg VariantConfig, fallback string) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	return fallback
}

func newForestVariant(cfg VariantConfig) Variant {
	rc := RandomForestConfig{}
	if cfg.RandomForest != nil {
		rc = *cfg.RandomForest
	}
	opts := []ensemble.Option{}
	if rc.NEstimators > 0 {
		opts = append(opts, ensemble.WithNEstimators(rc.NEstimators))
	}
	if rc.MaxDepth > 0 {
		opts = append(opts, ensemble.WithMaxDepth(rc.MaxDepth))
	}
	if rc.MinSamplesLeaf > 0 {
		opts = append(opts, ensemble.WithMinSamplesLeaf(rc.MinSamplesLeaf))
	}
	if rc.Seed != nil {
		opts = append(opts, ensemble.WithSeed(*rc.Seed))
	}
	if rc.NJobs > 0 {
		opts = append(opts, ensemble.WithNJobs(rc.NJobs))
	}
	return NewRegressorVariant(cfg.Name, titleOr(cfg, "Random Forest"), func() model.Regressor {
		return ensemble.NewRandomForestRegressor(opts...)
	})
}

func newGAMVariant(cfg VariantConfig) Variant {
	gc := GAMConfig{}
	if cfg.GAM != nil {
		gc = *cfg.GAM
	}
	opts := []gam.Option{}
	if gc.NSplines > 0 {
		opts = append(opts, gam.WithNSplines(gc.NSplines))
	}
	if gc.SplineOrder > 0 {
		opts = append(opts, gam.WithSplineOrder(gc.SplineOrder))
	}
	if gc.Lambda != nil {
		opts = append(opts, gam.WithLambda(*gc.Lambda))
	}
	return NewRegressorVariant(cfg.Name, titleOr(cfg, "Frequentist Penalized Regression"), func() model.Regressor {
		return gam.NewLinearGAM(opts...)
	})
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

var kernelTitles = map[string]string{
	"exp_squared":        "Exponential Squared",
	"rational_quadratic": "Rational Quadratic",
	"ornstein_uhlenbeck": "Ornstein-Uhlenbeck",
	"matern32":           "Matern 3/2",
}

func newGPVariant(cfg VariantConfig) (Variant, error) {
	if cfg.GP == nil {
		return nil, errors.NewConfigurationError(cfg.Name+".gp", "gp variants need a kernel", nil)
	}
	c := *cfg.GP

	start := gp.DefaultGridStart
	if c.GridStart != nil {
		start = *c.GridStart
	}
	grid, err := gp.Grid(start, orDefault(c.GridStop, gp.DefaultGridStop), orDefault(c.GridStep, gp.DefaultGridStep))
	if err != nil {
		return nil, errors.NewConfigurationError(cfg.Name+".gp.grid", err.Error(), nil)
	}

	sigma := orDefault(c.Sigma, gp.DefaultSigma)
	corrLen := orDefault(c.CorrLen, gp.DefaultCorrLen)
	var kernel gp.Kernel
	switch strings.ToLower(c.Kernel) {
	case "exp_squared":
		kernel = gp.NewExpSquared(sigma, corrLen)
	case "rational_quadratic":
		kernel = gp.NewRationalQuadratic(sigma, corrLen, orDefault(c.Alpha, gp.DefaultAlpha))
	case "ornstein_uhlenbeck":
		kernel = gp.NewOrnsteinUhlenbeck(sigma, corrLen)
	case "matern32":
		kernel = gp.NewMatern32(sigma, corrLen)
	default:
		return nil, errors.NewConfigurationError(cfg.Name+".gp.kernel", "unknown kernel", c.Kernel)
	}

	opts := []gp.Option{}
	if c.MaxIter > 0 {
		opts = append(opts, gp.WithMaxIter(c.MaxIter))
	}
	if c.Tol > 0 {
		opts = append(opts, gp.WithTol(c.Tol))
	}

	// One basis per variant, shared across folds.
	basis := gp.NewPrior(kernel, grid, orDefault(c.Energy, gp.DefaultEnergy))
	title := titleOr(cfg, kernelTitles[strings.ToLower(c.Kernel)])
	return NewRegressorVariant(cfg.Name, title, func() model.Regressor {
		return gp.NewRegressor(basis, opts...)
	}), nil
}

var structureTitles = map[prior.Structure]string{
	prior.Smooth:            "Smooth",
	prior.Periodic:          "Smooth + Periodic",
	prior.PeriodicSymmetric: "Smooth + Periodic + Symmetric",
}

func newPriorVariant(cfg VariantConfig) (Variant, error) {
	if cfg.DifferencePrior == nil {
		return nil, errors.NewConfigurationError(cfg.Name+".difference_prior", "difference prior variants need a structure", nil)
	}
	c := *cfg.DifferencePrior
	structure, err := prior.ParseStructure(c.Structure)
	if err != nil {
		return nil, errors.NewConfigurationError(cfg.Name+".difference_prior.structure", err.Error(), c.Structure)
	}

	opts := []prior.Option{}
	if c.Order > 0 {
		opts = append(opts, prior.WithOrder(c.Order))
	}
	if c.PriorVariance > 0 {
		opts = append(opts, prior.WithPriorVariance(c.PriorVariance))
	}
	if c.ObsVariance > 0 {
		opts = append(opts, prior.WithObsVariance(c.ObsVariance))
	}
	if c.SymmetryCenter != nil {
		opts = append(opts, prior.WithSymmetryCenter(*c.SymmetryCenter))
	}
	return NewRegressorVariant(cfg.Name, titleOr(cfg, structureTitles[structure]), func() model.Regressor {
		return prior.New(structure, opts...)
	}), nil
}

// Suite names accepted by SuiteConfigs.
const (
	SuiteLinear = "linear"
	SuiteForest = "forest"
	SuiteGAM    = "gam"
	SuiteGP     = "gp"
	SuitePrior  = "prior"
	SuiteAll    = "all"
)

// LinearSuite is the ordinary least squares baseline.
func LinearSuite() []VariantConfig {
	return []VariantConfig{{Name: "Linear Regression", Kind: KindLinear}}
}

// RandomForestSuite is a 100-tree forest with seed 42.
func RandomForestSuite() []VariantConfig {
	return []VariantConfig{{Name: "Random Forest", Kind: KindRandomForest}}
}

// GAMSuite is a single penalised spline term with 20 splines and lambda 0.6.
func GAMSuite() []VariantConfig {
	return []VariantConfig{{Name: "Frequentist Penalized Regression", Kind: KindGAM}}
}

// GPSuite compares the three kernels on the default grid.
func GPSuite() []VariantConfig {
	return []VariantConfig{
		{Name: "exp square", Kind: KindGP, GP: &GPConfig{Kernel: "exp_squared"}},
		{Name: "rat quad", Kind: KindGP, GP: &GPConfig{Kernel: "rational_quadratic"}},
		{Name: "orn uhl", Kind: KindGP, GP: &GPConfig{Kernel: "ornstein_uhlenbeck"}},
	}
}

// DifferencePriorSuite compares the smooth, periodic and periodic+symmetric priors.
func DifferencePriorSuite() []VariantConfig {
	return []VariantConfig{
		{Name: "smooth", Kind: KindDifferencePrior, DifferencePrior: &DifferencePriorConfig{Structure: "smooth"}},
		{Name: "periodic", Kind: KindDifferencePrior, DifferencePrior: &DifferencePriorConfig{Structure: "periodic"}},
		{Name: "both", Kind: KindDifferencePrior, DifferencePrior: &DifferencePriorConfig{Structure: "periodic_symmetric"}},
	}
}

// AllSuites concatenates every preset suite.
func AllSuites() []VariantConfig {
	var all []VariantConfig
	all = append(all, LinearSuite()...)
	all = append(all, RandomForestSuite()...)
	all = append(all, GAMSuite()...)
	all = append(all, GPSuite()...)
	all = append(all, DifferencePriorSuite()...)
	return all
}

// SuiteConfigs returns the preset suite with the given name.
func SuiteConfigs(name string) ([]VariantConfig, error) {
	switch strings.ToLower(name) {
	case SuiteLinear:
		return LinearSuite(), nil
	case SuiteForest:
		return RandomForestSuite(), nil
	case SuiteGAM:
		return GAMSuite(), nil
	case SuiteGP:
		return GPSuite(), nil
	case SuitePrior:
		return DifferencePriorSuite(), nil
	case SuiteAll, "":
		return AllSuites(), nil
	default:
		return nil, errors.NewConfigurationError("suite",
			fmt.Sprintf("must be one of %s", strings.Join([]string{SuiteAll, SuiteLinear, SuiteForest, SuiteGAM, SuiteGP, SuitePrior}, ", ")), name)
	}
}
