package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(messagesTotal, quotaBlocksTotal) }

var messagesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "outreach_messages_total",
		Help: "Outreach dispatch records by status (sent/skipped/failed) and method.",
	},
	[]string{"status", "method"},
)

var quotaBlocksTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "outreach_quota_blocks_total",
		Help: "Send attempts blocked by the daily cap.",
	},
)

func MessageDispatched(status, method string) {
	if method == "" {
		method = "none"
	}
	messagesTotal.WithLabelValues(norm(status), norm(method)).Inc()
}

func QuotaBlocked() { quotaBlocksTotal.Inc() }
