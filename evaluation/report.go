package evaluation

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/YuminosukeSato/unifit/metrics"
)

// Column headers of a PerformanceTable.
var Columns = []string{
	"Model",
	"Mean Squared Error",
	"Root Mean Squared Error",
	"Mean Absolute Error",
	"R2 Score",
}

// Row is the aggregate result of one variant: the unweighted mean of each
// metric over all folds. R2 is NaN if any fold had a constant target.
type Row struct {
	Model string  `json:"model"`
	MSE   float64 `json:"mse"`
	RMSE  float64 `json:"rmse"`
	MAE   float64 `json:"mae"`
	R2    float64 `json:"r2"`
}

// PerformanceTable holds one Row per variant in evaluation order.
type PerformanceTable struct {
	Rows []Row `json:"rows"`
}

// Row returns the row for the named variant.
func (t PerformanceTable) Row(model string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Model == model {
			return r, true
		}
	}
	return Row{}, false
}

// Concat appends the rows of several tables in order.
func Concat(tables ...PerformanceTable) PerformanceTable {
	var out PerformanceTable
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}

// WriteTo renders the table as aligned text columns.
func (t PerformanceTable) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)
	for i, c := range Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Model,
			formatMetric(r.MSE), formatMetric(r.RMSE), formatMetric(r.MAE), formatMetric(r.R2))
	}
	err := tw.Flush()
	return cw.n, err
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", v)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// FoldResult is the outcome of one (fold, variant) fit.
type FoldResult struct {
	Fold        int            `json:"fold"`
	Variant     string         `json:"variant"`
	Predictions []float64      `json:"predictions"`
	Scores      metrics.Scores `json:"scores"`
	Duration    time.Duration  `json:"duration"`
}

// Diagnostic pairs the scored inputs and targets of one fit with its
// predictions, for plotting.
type Diagnostic struct {
	Fold      int       `json:"fold"`
	Variant   string    `json:"variant"`
	Title     string    `json:"title"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Predicted []float64 `json:"predicted"`
}

// PanelTitle is the label used for the diagnostic panel, e.g.
// "Smooth (Fold 2)".
func (d Diagnostic) PanelTitle() string {
	return fmt.Sprintf("%s (Fold %d)", d.Title, d.Fold)
}

// Diagnostics holds every per-fold diagnostic in fold-major, variant order.
type Diagnostics []Diagnostic

// Folds returns the distinct fold numbers in order.
func (d Diagnostics) Folds() []int {
	var out []int
	seen := map[int]bool{}
	for _, diag := range d {
		if !seen[diag.Fold] {
			seen[diag.Fold] = true
			out = append(out, diag.Fold)
		}
	}
	return out
}

// Variants returns the distinct variant names in order.
func (d Diagnostics) Variants() []string {
	var out []string
	seen := map[string]bool{}
	for _, diag := range d {
		if !seen[diag.Variant] {
			seen[diag.Variant] = true
			out = append(out, diag.Variant)
		}
	}
	return out
}

// Get returns the diagnostic of one fold and variant.
func (d Diagnostics) Get(fold int, variant string) (Diagnostic, bool) {
	for _, diag := range d {
		if diag.Fold == fold && diag.Variant == variant {
			return diag, true
		}
	}
	return Diagnostic{}, false
}

// Report is everything one evaluation produces.
type Report struct {
	RunID       string           `json:"run_id"`
	Folds       int              `json:"folds"`
	Seed        int64            `json:"seed"`
	EvaluateOn  EvaluateOn       `json:"evaluate_on"`
	Table       PerformanceTable `json:"table"`
	FoldResults []FoldResult     `json:"fold_results"`
	Diagnostics Diagnostics      `json:"diagnostics"`
}

// ResultsFor returns the fold results of one variant in fold order.
func (r *Report) ResultsFor(variant string) []FoldResult {
	var out []FoldResult
	for _, fr := range r.FoldResults {
		if fr.Variant == variant {
			out = append(out, fr)
		}
	}
	return out
}
