package proxy

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	proxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "proxy_requests_total",
			Help:      "Total number of AI proxy requests by action and status.",
		},
		[]string{"action", "status"},
	)

	proxyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "satchel",
			Name:      "proxy_request_duration_seconds",
			Help:      "AI proxy request latency in seconds, provider call included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"action"},
	)
)

func statusLabel(status int) string {
	return strconv.Itoa(status)
}
