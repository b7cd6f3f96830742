package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_store_mutations_total",
			Help: "Store mutations by operation and outcome (applied or noop)",
		},
		[]string{"op", "outcome"},
	)

	persistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_store_persist_failures_total",
			Help: "Snapshots that could not be written to durable storage",
		},
	)

	boardsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskboard_store_boards",
			Help: "Number of boards in the current snapshot",
		},
	)
)
