// Package log defines standard attribute keys for model evaluation.
//
// Keys follow a hierarchical naming convention (e.g. "model.name", "cv.fold")
// so log lines from different runs can be filtered and aggregated.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model family.
	// Examples: "LinearRegression", "RandomForestRegressor", "GPAdditiveModel"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "evaluation", "gp", "prior"
	ComponentKey = "ml.component"

	// PhaseKey indicates which subset predictions were scored on.
	PhaseKey = "ml.phase"
)

// Cross-validation Context
const (
	// RunIDKey identifies one evaluator invocation.
	RunIDKey = "run.id"

	// FoldKey is the 1-based fold number.
	FoldKey = "cv.fold"

	// FoldsKey is the total number of folds (k).
	FoldsKey = "cv.folds"

	// VariantKey is the display name of the model variant.
	VariantKey = "cv.variant"

	// VariantsKey is the number of variants compared in a run.
	VariantsKey = "cv.variants"

	// EvaluateOnKey records whether metrics were computed in-sample or held-out.
	EvaluateOnKey = "cv.evaluate_on"

	// ParallelismKey records the number of concurrent fit jobs.
	ParallelismKey = "cv.parallelism"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples in the dataset or subset.
	SamplesKey = "data.samples"

	// TrainSamplesKey indicates the size of a fold's training subset.
	TrainSamplesKey = "data.train_samples"

	// EvalSamplesKey indicates the number of points predictions were scored on.
	EvalSamplesKey = "data.eval_samples"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MSEKey records mean squared error.
	MSEKey = "metrics.mse"

	// RMSEKey records root mean squared error.
	RMSEKey = "metrics.rmse"

	// MAEKey records mean absolute error.
	MAEKey = "metrics.mae"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range typically [-∞, 1.0], NaN when the target has no variance.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey records the current iteration in iterative fits.
	IterationKey = "training.iteration"
)

// Error and Configuration Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// WorkerIDKey identifies the worker that ran a job.
	WorkerIDKey = "infra.worker_id"
)

// Standard attribute values.
const (
	OperationFit        = "fit"
	OperationPredict    = "predict"
	OperationFitPredict = "fit_predict"
	OperationEvaluate   = "evaluate"
	OperationRender     = "render"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
)
