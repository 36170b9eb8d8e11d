package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anxiety_requests_total",
		Help: "Total number of requests by type and status",
	}, []string{"type", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anxiety_request_duration_seconds",
		Help:    "Duration of request handling",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anxiety_predictions_total",
		Help: "Total number of predictions by anxiety level",
	}, []string{"level"})

	interventionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anxiety_interventions_total",
		Help: "Total number of approved interventions",
	})

	baselineSamples = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "anxiety_baseline_samples",
		Help: "Number of samples folded into the typing baseline",
	})
)
