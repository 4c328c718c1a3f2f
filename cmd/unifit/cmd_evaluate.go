package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/YuminosukeSato/unifit/diagnostics"
	"github.com/YuminosukeSato/unifit/evaluation"
	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadEvaluateConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	dataPath, _ := flags.GetString("data")
	xCol, _ := flags.GetString("x-column")
	yCol, _ := flags.GetString("y-column")
	ds, err := evaluation.LoadCSV(dataPath, evaluation.CSVOptions{XColumn: xCol, YColumn: yCol})
	if err != nil {
		return err
	}

	variants, err := evaluation.NewVariants(cfg.Variants)
	if err != nil {
		return err
	}

	opts := []evaluation.Option{evaluation.WithLogger(log.GetLogger())}
	metricsPath, _ := flags.GetString("metrics-file")
	var registry *prometheus.Registry
	if metricsPath != "" {
		registry = prometheus.NewRegistry()
		in, err := evaluation.NewInstruments(registry)
		if err != nil {
			return errors.Wrap(err, "register metrics")
		}
		opts = append(opts, evaluation.WithInstruments(in))
	}

	ev, err := evaluation.NewEvaluator(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()

	report, runErr := ev.Run(ctx, ds, variants)
	if registry != nil {
		if err := prometheus.WriteToTextfile(metricsPath, registry); err != nil {
			log.GetLogger().Warn("writing metrics failed", "path", metricsPath, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if cfg.EvaluateOn == evaluation.EvaluateOnTrain {
		fmt.Fprintln(out, "Scores are in-sample (training subset of each fold); use --held-out for held-out scores.")
	}
	if _, err := report.Table.WriteTo(out); err != nil {
		return err
	}

	if plotPath, _ := flags.GetString("plot"); plotPath != "" {
		if err := diagnostics.NewRenderer().RenderFile(report.Diagnostics, plotPath); err != nil {
			return err
		}
		fmt.Fprintln(out, "Diagnostics written to", plotPath)
	}
	return nil
}

// loadEvaluateConfig merges the YAML config, explicitly set flags and the
// preset suite, in increasing order of precedence for the flags.
func loadEvaluateConfig(cmd *cobra.Command) (evaluation.Config, error) {
	flags := cmd.Flags()
	cfg := evaluation.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := evaluation.LoadConfig(path)
		if err != nil {
			return evaluation.Config{}, err
		}
		cfg = loaded
	}

	if flags.Changed("folds") {
		cfg.Folds, _ = flags.GetInt("folds")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("held-out") {
		heldOut, _ := flags.GetBool("held-out")
		cfg.EvaluateOn = evaluation.EvaluateOnTrain
		if heldOut {
			cfg.EvaluateOn = evaluation.EvaluateOnHeldOut
		}
	}
	if flags.Changed("parallel") {
		p, _ := flags.GetInt("parallel")
		if p == 0 {
			p = runtime.NumCPU()
		}
		cfg.Parallelism = p
	}
	if flags.Changed("fit-timeout") {
		cfg.FitTimeout, _ = flags.GetDuration("fit-timeout")
	}

	if len(cfg.Variants) == 0 || flags.Changed("suite") {
		suite, _ := flags.GetString("suite")
		variants, err := evaluation.SuiteConfigs(suite)
		if err != nil {
			return evaluation.Config{}, err
		}
		cfg.Variants = variants
	}
	return cfg, cfg.Validate()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
