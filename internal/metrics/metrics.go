// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomag_requests_total",
		Help: "Total API requests by endpoint and status class",
	}, []string{"endpoint", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geomag_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"endpoint"})
	EvaluatedPointsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomag_evaluated_points_total",
		Help: "Total field evaluations by model",
	}, []string{"model"})
	ExtrapolatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomag_extrapolated_total",
		Help: "Evaluations at dates outside the model epochs",
	}, []string{"model"})
	BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geomag_batch_size",
		Help:    "Number of points per evaluation batch",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	ModelLoadFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomag_model_load_fail_total",
		Help: "Total model load failures",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(EvaluatedPointsTotal)
	prometheus.MustRegister(ExtrapolatedTotal)
	prometheus.MustRegister(BatchSize)
	prometheus.MustRegister(ModelLoadFailTotal)
}

// Handler exposes the registered collectors for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
