// Package metrics exposes Prometheus instrumentation for the predictor.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	propagationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "passpredict_propagation_duration_seconds",
			Help:    "Duration of batch propagation runs in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	propagationSatellites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passpredict_propagation_satellites_total",
			Help: "Satellites propagated, by outcome.",
		},
		[]string{"outcome"},
	)

	passPredictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "passpredict_pass_predictions_total",
			Help: "Total pass prediction runs.",
		},
	)

	tleDatasetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "passpredict_tle_dataset_satellites",
			Help: "Number of satellites in the loaded TLE dataset.",
		},
	)

	tleDatasetAge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "passpredict_tle_dataset_age_seconds",
			Help: "Age of the loaded TLE dataset in seconds.",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passpredict_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passpredict_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		propagationDuration,
		propagationSatellites,
		passPredictions,
		tleDatasetSize,
		tleDatasetAge,
		httpRequestsTotal,
		httpDurationSeconds,
	)
}

// RecordPropagation records the outcome of one batch propagation run.
func RecordPropagation(duration time.Duration, success, failed int) {
	propagationDuration.Observe(duration.Seconds())
	propagationSatellites.WithLabelValues("success").Add(float64(success))
	propagationSatellites.WithLabelValues("error").Add(float64(failed))
}

// RecordPassPrediction counts a pass prediction run.
func RecordPassPrediction() {
	passPredictions.Inc()
}

// SetTLEDatasetSize updates the dataset size gauge.
func SetTLEDatasetSize(n int) {
	tleDatasetSize.Set(float64(n))
}

// SetTLEDatasetAge updates the dataset age gauge.
func SetTLEDatasetAge(seconds float64) {
	tleDatasetAge.Set(seconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}
