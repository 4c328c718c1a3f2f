// Package unifit compares univariate regression models with k-fold
// cross-validation.
//
// A single input x is related to a single target y by fitting several model
// families on every fold of a shuffled k-fold split and averaging MSE, RMSE,
// MAE and R² per model variant.
//
// # Installation
//
//	go get github.com/YuminosukeSato/unifit
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/unifit/evaluation"
//	)
//
//	func main() {
//	    ev, err := evaluation.NewEvaluator(evaluation.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    variants, err := evaluation.NewVariants(evaluation.AllSuites())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    table, _, err := ev.Evaluate(context.Background(), evaluation.NewDataset(x, y), variants)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    table.WriteTo(os.Stdout)
//	}
//
// # Packages
//
//   - evaluation: the cross-validation harness, variant factory, config and reports
//   - diagnostics: per-fold diagnostic panels rendered with gonum/plot
//   - linear: ordinary least squares on one input
//   - ensemble: regression trees and random forests
//   - gam: penalised B-spline smoother
//   - gp: Gaussian-process basis regression with several covariance kernels
//   - prior: difference-operator priors (smooth, periodic, symmetric)
//   - modelselection: shuffled k-fold splitting
//   - metrics: MSE, RMSE, MAE and R²
//   - preprocessing: standardisation
//   - core/model, core/linalg, core/parallel: shared estimator, solver and worker utilities
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Scoring
//
// By default each fold is scored on its own training subset, which measures
// in-sample fit. Set evaluate_on: held_out (or --held-out on the command line)
// to score on the held-out subset.
//
// # Command Line
//
//	go install github.com/YuminosukeSato/unifit/cmd/unifit@latest
//	unifit evaluate --data data.csv --suite all --plot folds.png
package unifit
