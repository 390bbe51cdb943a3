package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(publishRetriesTotal, publishFailuresTotal, duplicatesDroppedTotal, resultTimeoutsTotal)
}

var publishRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_publish_retries_total",
		Help: "Publish attempts beyond the first, per topic.",
	},
	[]string{"topic"},
)

var publishFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_publish_failures_total",
		Help: "Publishes that exhausted all retries, per topic.",
	},
	[]string{"topic"},
)

var duplicatesDroppedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_duplicates_dropped_total",
		Help: "Duplicate deliveries dropped by the listener's recent-id cache, per topic.",
	},
	[]string{"topic"},
)

var resultTimeoutsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "broker_result_timeouts_total",
		Help: "Watched correlation ids that saw no terminal signal within the bound.",
	},
)

func PublishRetried(topic string)   { publishRetriesTotal.WithLabelValues(norm(topic)).Inc() }
func PublishFailed(topic string)    { publishFailuresTotal.WithLabelValues(norm(topic)).Inc() }
func DuplicateDropped(topic string) { duplicatesDroppedTotal.WithLabelValues(norm(topic)).Inc() }
func ResultTimedOut()               { resultTimeoutsTotal.Inc() }
