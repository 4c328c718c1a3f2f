package main

import (
	"fmt"
	"os"

	"github.com/YuminosukeSato/unifit/pkg/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var (
		logLevel   string
		logConsole bool
	)

	rootCmd := &cobra.Command{
		Use:   "unifit",
		Short: "Compare univariate regression models with k-fold cross-validation",
		Long: `unifit fits linear, random forest, penalised spline, Gaussian process
and difference-prior models on every fold of a shuffled k-fold split and
reports the mean MSE, RMSE, MAE and R2 of each.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return log.SetupLogger(logLevel, cmd.ErrOrStderr(), logConsole)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("UNIFIT_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "human-readable log output instead of JSON")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a cross-validated comparison on a CSV dataset",
		Args:  cobra.NoArgs,
		RunE:  runEvaluate, // Defined in cmd_evaluate.go
	}
	f := evaluateCmd.Flags()
	f.String("data", "", "CSV file with x and y columns (required)")
	f.String("x-column", "x", "input column name when the CSV has a header")
	f.String("y-column", "y", "target column name when the CSV has a header")
	f.String("config", "", "YAML evaluation config")
	f.String("suite", "all", "preset variants when the config lists none (all, linear, forest, gam, gp, prior)")
	f.Int("folds", 5, "number of cross-validation folds")
	f.Int64("seed", 42, "fold shuffling seed")
	f.Bool("held-out", false, "score predictions on each fold's held-out subset instead of its training subset")
	f.Int("parallel", 1, "concurrent fits (0 uses every CPU)")
	f.Duration("fit-timeout", 0, "deadline for a single fit, e.g. 30s (0 disables)")
	f.String("plot", "", "write per-fold diagnostic panels to this image (.png, .svg, .pdf)")
	f.String("metrics-file", "", "write Prometheus metrics of the run to this file")
	_ = evaluateCmd.MarkFlagRequired("data")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the unifit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "unifit", version)
		},
	}

	rootCmd.AddCommand(evaluateCmd, versionCmd)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
