package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(formRunsTotal, formStepsPerRun) }

var formRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "form_runs_total",
		Help: "Form completion runs by outcome (completed/failed) and failure reason.",
	},
	[]string{"outcome", "reason"},
)

var formStepsPerRun = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "form_steps_per_run",
		Help:    "Wizard steps traversed per form run.",
		Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
	},
)

func FormRunFinished(outcome, reason string, steps int) {
	if reason == "" {
		reason = "none"
	}
	formRunsTotal.WithLabelValues(norm(outcome), norm(reason)).Inc()
	formStepsPerRun.Observe(float64(steps))
}
