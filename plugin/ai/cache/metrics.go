package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "cache_hits_total",
			Help:      "Total number of result cache hits.",
		},
		[]string{"backend"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "cache_misses_total",
			Help:      "Total number of result cache misses.",
		},
		[]string{"backend"},
	)
)
