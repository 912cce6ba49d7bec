package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "batch_waves_total",
			Help:      "Total number of dispatch waves fired.",
		},
	)

	waveSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "satchel",
			Name:      "batch_wave_size",
			Help:      "Number of items per dispatch wave.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	itemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "batch_items_total",
			Help:      "Total number of items enqueued.",
		},
	)

	itemFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "satchel",
			Name:      "batch_item_failures_total",
			Help:      "Total number of items whose dispatch failed.",
		},
	)
)
