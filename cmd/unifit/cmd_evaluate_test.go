package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/unifit/pkg/errors"
	"github.com/YuminosukeSato/unifit/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSineCSV(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("x,y\n")
	for i := 0; i < n; i++ {
		x := 6 * float64(i) / float64(n-1)
		fmt.Fprintf(&b, "%g,%g\n", x, math.Sin(x))
	}
	path := filepath.Join(t.TempDir(), "sine.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := log.GetLogger()
	t.Cleanup(func() {
		log.SetLogger(prev)
		errors.SetZerologWarnFunc(nil)
	})

	cmd := newRootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "unifit dev\n", out)
}

func TestEvaluateCommand(t *testing.T) {
	data := writeSineCSV(t, 30)
	dir := t.TempDir()
	plot := filepath.Join(dir, "folds.svg")
	metrics := filepath.Join(dir, "unifit.prom")

	out, err := execute(t, "evaluate",
		"--data", data,
		"--suite", "linear",
		"--folds", "3",
		"--plot", plot,
		"--metrics-file", metrics,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "in-sample")
	assert.Contains(t, out, "Mean Squared Error")
	assert.Contains(t, out, "Linear Regression")
	assert.Contains(t, out, "Diagnostics written to")

	svg, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "Linear Regression (Fold 3)")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `unifit_evaluation_fits_total{status="ok",variant="Linear Regression"} 3`)
}

func TestEvaluateCommandConfig(t *testing.T) {
	data := writeSineCSV(t, 24)
	cfgPath := filepath.Join(t.TempDir(), "unifit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
folds: 4
evaluate_on: held_out
variants:
  - name: rough
    kind: gam
    gam:
      lambda: 0.01
  - name: smooth
    kind: difference_prior
    difference_prior:
      structure: smooth
`), 0o600))

	out, err := execute(t, "evaluate", "--data", data, "--config", cfgPath, "--parallel", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "in-sample")
	assert.Contains(t, out, "rough")
	assert.Contains(t, out, "smooth")
}

func TestEvaluateCommandErrors(t *testing.T) {
	data := writeSineCSV(t, 10)

	_, err := execute(t, "evaluate")
	assert.Error(t, err, "--data is required")

	_, err = execute(t, "evaluate", "--data", data, "--folds", "11", "--suite", "linear")
	var cfgErr *errors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "folds", cfgErr.Field)

	_, err = execute(t, "evaluate", "--data", data, "--suite", "boosting")
	assert.True(t, errors.As(err, &cfgErr))

	_, err = execute(t, "evaluate", "--data", data, "--suite", "linear", "--plot", filepath.Join(t.TempDir(), "x.gif"))
	assert.Error(t, err)

	_, err = execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}
