package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(classificationsTotal, llmLatencyMs) }

var classificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "role_classifications_total",
		Help: "Role classifications by source (rule/cache/llm/coerced).",
	},
	[]string{"source"},
)

var llmLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "llm_call_latency_ms",
		Help:    "Language-model call latency distribution in milliseconds.",
		Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"op", "success"},
)

func Classified(source string) { classificationsTotal.WithLabelValues(norm(source)).Inc() }

func ObserveLLMCall(op string, latencyMs int, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	llmLatencyMs.WithLabelValues(norm(op), s).Observe(float64(latencyMs))
}
