// Package evaluation is the cross-validated model comparison harness.
//
// An Evaluator partitions a univariate dataset into k shuffled folds, fits
// every Variant on every fold, scores the predictions with MSE, RMSE, MAE and
// R², and averages the scores per variant into a PerformanceTable. Per-fold
// predictions are kept as Diagnostics for plotting.
//
// By default predictions are scored on the training subset of each fold, which
// measures in-sample fit. Set Config.EvaluateOn to EvaluateOnHeldOut to score
// on the held-out subset instead.
//
// Example:
//
//	ev, err := evaluation.NewEvaluator(evaluation.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	variants, err := evaluation.NewVariants(evaluation.AllSuites())
//	if err != nil {
//	    return err
//	}
//	table, diags, err := ev.Evaluate(ctx, evaluation.NewDataset(x, y), variants)
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/YuminosukeSato/unifit/core/parallel"
	"github.com/YuminosukeSato/unifit/metrics"
	"github.com/YuminosukeSato/unifit/modelselection"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/pkg/log"
	"github.com/google/uuid"
)

// Evaluator runs cross-validated comparisons. It holds no per-run state and
// may be used by several goroutines at once.
type Evaluator struct {
	cfg         Config
	logger      log.Logger
	instruments *Instruments
	newRunID    func() string
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger; the process default is used otherwise.
func WithLogger(l log.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithInstruments records Prometheus metrics for every run.
func WithInstruments(in *Instruments) Option {
	return func(e *Evaluator) {
		e.instruments = in
	}
}

// WithRunIDFunc overrides the run identifier generator.
func WithRunIDFunc(fn func() string) Option {
	return func(e *Evaluator) {
		e.newRunID = fn
	}
}

// NewEvaluator validates cfg and creates an evaluator. cfg.Variants is not
// used here; pass the variants to Evaluate.
func NewEvaluator(cfg Config, opts ...Option) (*Evaluator, error) {
	if cfg.EvaluateOn == "" {
		cfg.EvaluateOn = EvaluateOnTrain
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{
		cfg:      cfg,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLogger()
	}
	return e, nil
}

// Config returns the evaluator configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate runs the comparison and returns the aggregate table and the
// per-fold diagnostics.
func (e *Evaluator) Evaluate(ctx context.Context, ds Dataset, variants []Variant) (PerformanceTable, Diagnostics, error) {
	report, err := e.Run(ctx, ds, variants)
	if err != nil {
		return PerformanceTable{}, nil, err
	}
	return report.Table, report.Diagnostics, nil
}

// Run is Evaluate returning the full report including fold results.
//
// Configuration problems are reported as ConfigurationError before any fit
// runs. The first failing fit aborts the run with a ModelFitError; no partial
// table is returned.
func (e *Evaluator) Run(ctx context.Context, ds Dataset, variants []Variant) (report *Report, err error) {
	var table *PerformanceTable
	defer func() { e.instruments.observeRun(table, err) }()

	if err := e.checkInputs(ds, variants); err != nil {
		return nil, err
	}
	folds, err := modelselection.NewKFold(e.cfg.Folds, e.cfg.Seed).Split(ds.Len())
	if err != nil {
		return nil, err
	}

	runID := e.newRunID()
	logger := e.logger.With(log.RunIDKey, runID, log.ComponentKey, "evaluation")
	workers := e.workers(len(folds) * len(variants))
	logger.Info("evaluation started",
		log.OperationKey, log.OperationEvaluate,
		log.SamplesKey, ds.Len(),
		log.FoldsKey, e.cfg.Folds,
		log.VariantsKey, len(variants),
		log.RandomSeedKey, e.cfg.Seed,
		log.EvaluateOnKey, string(e.cfg.EvaluateOn),
		log.ParallelismKey, workers,
	)
	if e.cfg.EvaluateOn == EvaluateOnTrain {
		logger.Warn("scoring predictions on the training subset of each fold; metrics reflect in-sample fit, not generalization",
			log.EvaluateOnKey, string(e.cfg.EvaluateOn))
	}

	start := time.Now()
	nv := len(variants)
	results := make([]FoldResult, len(folds)*nv)
	diags := make(Diagnostics, len(folds)*nv)

	err = parallel.ForEach(ctx, len(results), workers, func(ctx context.Context, i int) error {
		fold := folds[i/nv]
		v := variants[i%nv]
		res, diag, err := e.fitOne(ctx, logger, ds, fold, v)
		if err != nil {
			return err
		}
		results[i] = res
		diags[i] = diag
		return nil
	})
	if err != nil {
		var fitErr *errors.ModelFitError
		if !errors.As(err, &fitErr) {
			// cancelled before the job started
			err = errors.Wrap(err, "evaluation aborted")
		}
		logger.Error("evaluation failed", err, log.DurationMsKey, time.Since(start).Milliseconds())
		return nil, err
	}

	agg := aggregate(results, variants)
	table = &agg
	report = &Report{
		RunID:       runID,
		Folds:       e.cfg.Folds,
		Seed:        e.cfg.Seed,
		EvaluateOn:  e.cfg.EvaluateOn,
		Table:       agg,
		FoldResults: results,
		Diagnostics: diags,
	}
	logger.Info("evaluation completed",
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.VariantsKey, nv,
	)
	return report, nil
}

func (e *Evaluator) checkInputs(ds Dataset, variants []Variant) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if len(variants) == 0 {
		return errors.NewConfigurationError("variants", "at least one variant is required", 0)
	}
	seen := make(map[string]bool, len(variants))
	for i, v := range variants {
		if v == nil {
			return errors.NewConfigurationError(fmt.Sprintf("variants[%d]", i), "variant is nil", nil)
		}
		name := v.Name()
		if name == "" {
			return errors.NewConfigurationError(fmt.Sprintf("variants[%d].name", i), "must not be empty", name)
		}
		if seen[name] {
			return errors.NewConfigurationError(fmt.Sprintf("variants[%d].name", i), "duplicate variant name", name)
		}
		seen[name] = true
	}
	return nil
}

func (e *Evaluator) workers(jobs int) int {
	if e.cfg.Parallelism <= 1 {
		return 1
	}
	return parallel.Workers(e.cfg.Parallelism, jobs)
}

// fitOne fits one variant on one fold and scores it.
func (e *Evaluator) fitOne(ctx context.Context, logger log.Logger, ds Dataset, fold modelselection.Fold, v Variant) (FoldResult, Diagnostic, error) {
	name := v.Name()
	xTrain := modelselection.Take(ds.X, fold.Train)
	yTrain := modelselection.Take(ds.Y, fold.Train)
	xEval, yEval := xTrain, yTrain
	if e.cfg.EvaluateOn == EvaluateOnHeldOut {
		xEval = modelselection.Take(ds.X, fold.Test)
		yEval = modelselection.Take(ds.Y, fold.Test)
	}

	fitCtx := ctx
	if e.cfg.FitTimeout > 0 {
		var cancel context.CancelFunc
		fitCtx, cancel = context.WithTimeout(ctx, e.cfg.FitTimeout)
		defer cancel()
	}

	start := time.Now()
	pred, err := invoke(fitCtx, v, xTrain, yTrain, xEval)
	if err == nil && len(pred) != len(yEval) {
		err = errors.NewDimensionError(name+".FitPredict", len(yEval), len(pred), 0)
	}
	var scores metrics.Scores
	if err == nil {
		scores, err = metrics.Regression(yEval, pred)
	}
	elapsed := time.Since(start)
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		// the run was cancelled from outside this fit, usually by a failing sibling
		return FoldResult{}, Diagnostic{}, err
	}
	e.instruments.observeFit(name, elapsed, err)

	if err != nil {
		fitErr := errors.NewModelFitError(name, fold.Index, err)
		logger.Error("fit failed", fitErr,
			log.VariantKey, name,
			log.FoldKey, fold.Index,
			log.DurationMsKey, elapsed.Milliseconds(),
		)
		return FoldResult{}, Diagnostic{}, fitErr
	}

	logger.Debug("fit completed",
		log.VariantKey, name,
		log.FoldKey, fold.Index,
		log.OperationKey, log.OperationFitPredict,
		log.TrainSamplesKey, len(xTrain),
		log.EvalSamplesKey, len(xEval),
		log.DurationMsKey, elapsed.Milliseconds(),
		log.MSEKey, scores.MSE,
		log.RMSEKey, scores.RMSE,
		log.MAEKey, scores.MAE,
		log.R2ScoreKey, scores.R2,
	)

	title := name
	if t, ok := v.(Titler); ok {
		title = t.Title()
	}
	result := FoldResult{
		Fold:        fold.Index,
		Variant:     name,
		Predictions: pred,
		Scores:      scores,
		Duration:    elapsed,
	}
	diag := Diagnostic{
		Fold:      fold.Index,
		Variant:   name,
		Title:     title,
		X:         xEval,
		Y:         yEval,
		Predicted: pred,
	}
	return result, diag, nil
}

// invoke calls v.FitPredict, turning panics into errors. When ctx can be
// cancelled the call runs on its own goroutine so an expired deadline is
// reported even if the variant ignores ctx; the abandoned call finishes in the
// background and its result is dropped.
func invoke(ctx context.Context, v Variant, xTrain, yTrain, xEval []float64) ([]float64, error) {
	call := func() ([]float64, error) {
		var out []float64
		err := errors.SafeExecute(v.Name()+".FitPredict", func() error {
			var err error
			out, err = v.FitPredict(ctx, xTrain, yTrain, xEval)
			return err
		})
		return out, err
	}
	if ctx.Done() == nil {
		return call()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		pred []float64
		err  error
	}
	done := make(chan result, 1)
	go func() {
		pred, err := call()
		done <- result{pred: pred, err: err}
	}()
	select {
	case r := <-done:
		return r.pred, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// aggregate averages fold scores per variant, in variant order.
func aggregate(results []FoldResult, variants []Variant) PerformanceTable {
	byVariant := make(map[string][]metrics.Scores, len(variants))
	for _, r := range results {
		byVariant[r.Variant] = append(byVariant[r.Variant], r.Scores)
	}
	table := PerformanceTable{Rows: make([]Row, 0, len(variants))}
	for _, v := range variants {
		mean := metrics.MeanScores(byVariant[v.Name()])
		table.Rows = append(table.Rows, Row{
			Model: v.Name(),
			MSE:   mean.MSE,
			RMSE:  mean.RMSE,
			MAE:   mean.MAE,
			R2:    mean.R2,
		})
	}
	return table
}
