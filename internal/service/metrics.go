package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_reports_generated_total",
			Help: "Total number of reports generated, cache hits excluded",
		},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_deliveries_total",
			Help: "Per-recipient delivery outcomes",
		},
		[]string{"outcome"},
	)

	deliveryRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_delivery_run_duration_seconds",
			Help:    "Duration of full delivery runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
