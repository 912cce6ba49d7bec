package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "dispatch_requests_total",
			Help:      "Total number of proxy dispatch calls.",
		},
		[]string{"action", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "satchel",
			Name:      "dispatch_duration_seconds",
			Help:      "Proxy dispatch call duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"action"},
	)
)
