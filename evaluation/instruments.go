package evaluation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instruments records evaluator activity as Prometheus metrics. A nil
// *Instruments records nothing.
type Instruments struct {
	// fits counts FitPredict calls.
	// Labels: variant, status (ok, error)
	fits *prometheus.CounterVec

	// fitDuration measures FitPredict latency.
	// Labels: variant
	fitDuration *prometheus.HistogramVec

	// runs counts evaluations.
	// Labels: status (ok, error)
	runs *prometheus.CounterVec

	// score holds the aggregate metrics of the last successful run.
	// Labels: variant, metric (mse, rmse, mae, r2)
	score *prometheus.GaugeVec
}

// NewInstruments creates the evaluator metrics and registers them with reg.
func NewInstruments(reg prometheus.Registerer) (*Instruments, error) {
	in := &Instruments{
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unifit",
			Subsystem: "evaluation",
			Name:      "fits_total",
			Help:      "Total FitPredict calls by variant and outcome",
		}, []string{"variant", "status"}),
		fitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unifit",
			Subsystem: "evaluation",
			Name:      "fit_duration_seconds",
			Help:      "FitPredict latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"variant"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unifit",
			Subsystem: "evaluation",
			Name:      "runs_total",
			Help:      "Total evaluations by outcome",
		}, []string{"status"}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "unifit",
			Subsystem: "evaluation",
			Name:      "score",
			Help:      "Aggregate metric of the last successful evaluation",
		}, []string{"variant", "metric"}),
	}
	for _, c := range []prometheus.Collector{in.fits, in.fitDuration, in.runs, in.score} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (in *Instruments) observeFit(variant string, d time.Duration, err error) {
	if in == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	in.fits.WithLabelValues(variant, status).Inc()
	in.fitDuration.WithLabelValues(variant).Observe(d.Seconds())
}

func (in *Instruments) observeRun(table *PerformanceTable, err error) {
	if in == nil {
		return
	}
	if err != nil {
		in.runs.WithLabelValues("error").Inc()
		return
	}
	in.runs.WithLabelValues("ok").Inc()
	for _, r := range table.Rows {
		in.score.WithLabelValues(r.Model, "mse").Set(r.MSE)
		in.score.WithLabelValues(r.Model, "rmse").Set(r.RMSE)
		in.score.WithLabelValues(r.Model, "mae").Set(r.MAE)
		in.score.WithLabelValues(r.Model, "r2").Set(r.R2)
	}
}
