package errors

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("folds", "must be between 2 and the number of samples (10)", 11)

	want := "unifit: invalid configuration 'folds': must be between 2 and the number of samples (10) (got: 11)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	var cfgErr *ConfigurationError
	if !As(err, &cfgErr) {
		t.Fatal("Error should be castable to *ConfigurationError")
	}
	if cfgErr.Field != "folds" || cfgErr.Value != 11 {
		t.Errorf("unexpected fields: %+v", cfgErr)
	}
}

func TestNewModelFitError(t *testing.T) {
	tests := []struct {
		name    string
		variant string
		fold    int
		err     error
		wantMsg string
	}{
		{
			name:    "with cause",
			variant: "exp square",
			fold:    3,
			err:     ErrSingularMatrix,
			wantMsg: `unifit: fitting "exp square" on fold 3 failed: singular matrix`,
		},
		{
			name:    "without cause",
			variant: "smooth",
			fold:    1,
			err:     nil,
			wantMsg: `unifit: fitting "smooth" on fold 1 failed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelFitError(tt.variant, tt.fold, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var fitErr *ModelFitError
			if !As(err, &fitErr) {
				t.Fatal("Error should be castable to *ModelFitError")
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("ModelFitError should unwrap to its cause")
			}
		})
	}
}

func TestNewModelError(t *testing.T) {
	err := NewModelError("LinearRegression.Fit", "singular matrix", ErrSingularMatrix)

	want := "unifit: LinearRegression.Fit: singular matrix: singular matrix"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !Is(err, ErrSingularMatrix) {
		t.Error("ModelError should unwrap to ErrSingularMatrix")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 9, 0)

	want := "unifit: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearGAM", "Predict")

	want := "unifit: LinearGAM: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestUndefinedMetricWarning(t *testing.T) {
	w := NewUndefinedMetricWarning("r2_score", "zero variance in y_true", math.NaN())

	if !strings.Contains(w.Error(), "'r2_score' is ill-defined") {
		t.Errorf("unexpected message: %s", w.Error())
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Warn().EmbedObject(w).Msg("metric")
	if !strings.Contains(buf.String(), `"type":"UndefinedMetricWarning"`) {
		t.Errorf("zerolog output missing type field: %s", buf.String())
	}
}

func TestWarnRouting(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(error) {})

	Warn(NewConvergenceWarning("gp.noise", 50, "tolerance not reached"))
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}

	var routed []error
	SetZerologWarnFunc(func(w error) { routed = append(routed, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("r2_score", "constant target", math.NaN()))
	if len(routed) != 1 || len(got) != 1 {
		t.Errorf("zerolog func should take precedence: routed=%d handler=%d", len(routed), len(got))
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(context.DeadlineExceeded, "fold %d", 2)

	if !Is(wrapped, context.DeadlineExceeded) {
		t.Error("Expected Is(wrapped, context.DeadlineExceeded) to be true")
	}
	if !strings.Contains(wrapped.Error(), "fold 2") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("ok", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("prior.solve", []float64{1, math.NaN(), math.Inf(1)}, 4)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 2 || numErr.Iteration != 4 {
		t.Errorf("unexpected error contents: %+v", numErr)
	}

	if err := CheckScalar("noise", math.Inf(-1), 1); err == nil {
		t.Error("expected error for -Inf")
	}
}
