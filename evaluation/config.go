package evaluation

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EvaluateOn selects which subset of a fold predictions are scored on.
type EvaluateOn string

const (
	// EvaluateOnTrain scores predictions on the training subset of each fold.
	// This measures in-sample fit, not generalization. It is the default.
	EvaluateOnTrain EvaluateOn = "train"

	// EvaluateOnHeldOut fits on the training subset and scores on the
	// held-out subset.
	EvaluateOnHeldOut EvaluateOn = "held_out"
)

// Kind tags the model family of a VariantConfig.
type Kind string

const (
	KindLinear          Kind = "linear"
	KindRandomForest    Kind = "random_forest"
	KindGAM             Kind = "gam"
	KindGP              Kind = "gp"
	KindDifferencePrior Kind = "difference_prior"
)

// Default evaluation settings.
const (
	DefaultFolds = 5
	DefaultSeed  = 42
)

// Config describes one evaluation run.
type Config struct {
	// Folds is k in k-fold cross-validation.
	Folds int `yaml:"folds" validate:"min=2"`

	// Seed drives the fold shuffling.
	Seed int64 `yaml:"seed"`

	// EvaluateOn defaults to "train".
	EvaluateOn EvaluateOn `yaml:"evaluate_on" validate:"omitempty,oneof=train held_out"`

	// Parallelism is the number of (fold, variant) fits run concurrently.
	// 0 and 1 both mean sequential.
	Parallelism int `yaml:"parallelism" validate:"min=0"`

	// FitTimeout bounds each FitPredict call; 0 disables the deadline.
	FitTimeout time.Duration `yaml:"fit_timeout" validate:"min=0"`

	// Variants to compare. The command line falls back to a preset suite
	// when this is empty.
	Variants []VariantConfig `yaml:"variants" validate:"dive"`
}

// VariantConfig describes one model variant. Exactly the block matching Kind
// is read; a missing block means family defaults.
type VariantConfig struct {
	Name  string `yaml:"name" validate:"required"`
	Kind  Kind   `yaml:"kind" validate:"required,oneof=linear random_forest gam gp difference_prior"`
	Title string `yaml:"title"`

	RandomForest    *RandomForestConfig    `yaml:"random_forest"`
	GAM             *GAMConfig             `yaml:"gam"`
	GP              *GPConfig              `yaml:"gp"`
	DifferencePrior *DifferencePriorConfig `yaml:"difference_prior"`
}

// RandomForestConfig holds forest hyperparameters. Zero values select the
// defaults (100 trees, fully grown, seed 42).
type RandomForestConfig struct {
	NEstimators    int    `yaml:"n_estimators" validate:"min=0"`
	MaxDepth       int    `yaml:"max_depth" validate:"min=0"`
	MinSamplesLeaf int    `yaml:"min_samples_leaf" validate:"min=0"`
	Seed           *int64 `yaml:"seed"`
	NJobs          int    `yaml:"n_jobs" validate:"min=0"`
}

// GAMConfig holds the smooth term settings. Zero values select 20 cubic
// splines; a nil Lambda selects 0.6.
type GAMConfig struct {
	NSplines    int      `yaml:"n_splines" validate:"omitempty,min=4"`
	SplineOrder int      `yaml:"spline_order" validate:"min=0,max=5"`
	Lambda      *float64 `yaml:"lambda" validate:"omitempty,gte=0"`
}

// GPConfig holds the kernel, grid and fit settings of a Gaussian-process
// variant. Zero values select the defaults (grid 0..60 step 0.1, corr_len 10,
// sigma 700, alpha 1, energy 0.9).
type GPConfig struct {
	Kernel    string   `yaml:"kernel" validate:"required,oneof=exp_squared rational_quadratic ornstein_uhlenbeck matern32"`
	GridStart *float64 `yaml:"grid_start"`
	GridStop  float64  `yaml:"grid_stop" validate:"gte=0"`
	GridStep  float64  `yaml:"grid_step" validate:"gte=0"`
	CorrLen   float64  `yaml:"corr_len" validate:"gte=0"`
	Sigma     float64  `yaml:"sigma" validate:"gte=0"`
	Alpha     float64  `yaml:"alpha" validate:"gte=0"`
	Energy    float64  `yaml:"energy" validate:"gte=0,lte=1"`
	MaxIter   int      `yaml:"max_iter" validate:"min=0"`
	Tol       float64  `yaml:"tol" validate:"gte=0"`
}

// DifferencePriorConfig holds the prior structure and variances. Zero values
// select order 2, prior variance 0.01, observation variance 0.1; a nil
// SymmetryCenter selects −π/4.
type DifferencePriorConfig struct {
	Structure      string   `yaml:"structure" validate:"required,oneof=smooth periodic periodic_symmetric both"`
	Order          int      `yaml:"order" validate:"min=0"`
	PriorVariance  float64  `yaml:"prior_variance" validate:"gte=0"`
	ObsVariance    float64  `yaml:"obs_variance" validate:"gte=0"`
	SymmetryCenter *float64 `yaml:"symmetry_center"`
}

// DefaultConfig returns 5 folds, seed 42, in-sample scoring, sequential.
func DefaultConfig() Config {
	return Config{
		Folds:      DefaultFolds,
		Seed:       DefaultSeed,
		EvaluateOn: EvaluateOnTrain,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks field ranges. Dataset-dependent checks (folds against the
// number of samples) happen in the evaluator.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return toConfigurationError(err)
	}
	seen := make(map[string]bool, len(c.Variants))
	for i, v := range c.Variants {
		if seen[v.Name] {
			return errors.NewConfigurationError(fmt.Sprintf("variants[%d].name", i), "duplicate variant name", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

func toConfigurationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewConfigurationError("config", err.Error(), nil)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	reason := fe.Tag()
	if fe.Param() != "" {
		reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return errors.NewConfigurationError(field, "failed validation "+reason, fe.Value())
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.NewConfigurationError("config", err.Error(), nil)
	}
	if cfg.EvaluateOn == "" {
		cfg.EvaluateOn = EvaluateOnTrain
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}
