// Package metrics registers the Prometheus instrumentation for the engine
// and its transports.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Training log
	TrainingsLogged   *prometheus.CounterVec
	RecordTransitions *prometheus.CounterVec

	// Recommender
	Recommendations *prometheus.CounterVec

	// Transports
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BotUpdates          *prometheus.CounterVec
	RemindersSent       prometheus.Counter
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// New creates and registers all metrics. Safe to call more than once; the
// same set is returned.
func New() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			TrainingsLogged: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "wuji_trainings_logged_total",
					Help: "Total number of training entries logged",
				},
				[]string{"exercise"},
			),
			RecordTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "wuji_record_transitions_total",
					Help: "Record lifecycle transitions by classification",
				},
				[]string{"exercise", "classification"},
			),
			Recommendations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "wuji_recommendations_total",
					Help: "Recommendations issued by exercise role",
				},
				[]string{"role"},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "wuji_http_requests_total",
					Help: "Total HTTP requests by path and status",
				},
				[]string{"path", "method", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "wuji_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"path", "method"},
			),
			BotUpdates: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "wuji_bot_updates_total",
					Help: "Telegram updates handled by command",
				},
				[]string{"command"},
			),
			RemindersSent: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "wuji_reminders_sent_total",
					Help: "Training reminders delivered",
				},
			),
		}
	})
	return sharedMetrics
}
