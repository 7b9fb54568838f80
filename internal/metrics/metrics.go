// Package metrics defines Prometheus metrics for the auth and upload flows.
//
// Metric naming follows Prometheus conventions:
//   - coursehub_ prefix for all custom metrics
//   - _total suffix for counters
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// AuthAttemptsTotal counts signup and login attempts by role, operation and outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_auth_attempts_total",
			Help: "Total signup and login attempts by role, operation and outcome.",
		},
		[]string{"role", "operation", "outcome"},
	)

	// UploadsTotal counts course uploads by bucket and outcome.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_uploads_total",
			Help: "Total course file uploads by bucket and outcome.",
		},
		[]string{"bucket", "outcome"},
	)

	// SessionsDestroyedTotal counts explicit logouts.
	SessionsDestroyedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursehub_sessions_destroyed_total",
			Help: "Total sessions destroyed by logout.",
		},
	)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		AuthAttemptsTotal,
		UploadsTotal,
		SessionsDestroyedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordAuth records one signup or login attempt.
func RecordAuth(role, operation, outcome string) {
	AuthAttemptsTotal.WithLabelValues(role, operation, outcome).Inc()
}

// RecordUpload records one upload attempt. bucket is empty when the file was
// rejected before classification succeeded.
func RecordUpload(bucket, outcome string) {
	if bucket == "" {
		bucket = "none"
	}
	UploadsTotal.WithLabelValues(bucket, outcome).Inc()
}

// RecordLogout records one destroyed session.
func RecordLogout() {
	SessionsDestroyedTotal.Inc()
}

// Handler serves the registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
