package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(tasksFinishedTotal, taskDurationSeconds) }

var tasksFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "workflow_tasks_finished_total",
		Help: "Total number of workflow tasks finished, labeled by kind and terminal state.",
	},
	[]string{"kind", "state"},
)

var taskDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "workflow_task_duration_seconds",
		Help:    "Wall-clock duration of workflow tasks from start to terminal state.",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
	},
	[]string{"kind"},
)

func TaskFinished(kind, state string, seconds float64) {
	tasksFinishedTotal.WithLabelValues(norm(kind), norm(state)).Inc()
	taskDurationSeconds.WithLabelValues(norm(kind)).Observe(seconds)
}
