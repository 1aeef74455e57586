// Package metrics provides Prometheus metrics for the status overlay and
// its fetch workers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	escalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusicons_escalations_total",
			Help: "Status escalation requests issued by the overlay, by tier",
		},
		[]string{"tier"},
	)

	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusicons_overlay_renders_total",
			Help: "Overlay render calls by view and terminal state",
		},
		[]string{"view", "state"},
	)

	redrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusicons_redraw_requests_total",
			Help: "Redraw requests issued by the refresh broker, by trigger",
		},
		[]string{"source"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statusicons_fetch_duration_seconds",
			Help:    "Duration of status fetch batches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tier"},
	)

	fetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusicons_fetch_errors_total",
			Help: "Failed status fetch batches",
		},
		[]string{"tier"},
	)

	frameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "statusicons_frame_duration_seconds",
			Help:    "Time to draw one browser frame",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	fetchQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statusicons_fetch_requests_dropped_total",
			Help: "Status requests dropped because the fetch queue was full",
		},
	)
)

// RecordEscalation counts one escalation request.
func RecordEscalation(tier string) {
	escalationsTotal.WithLabelValues(tier).Inc()
}

// RecordRender counts one overlay render call.
func RecordRender(view, state string) {
	rendersTotal.WithLabelValues(view, state).Inc()
}

// RecordRedraw counts one broker redraw request.
func RecordRedraw(source string) {
	redrawsTotal.WithLabelValues(source).Inc()
}

// RecordFetch observes one fetch batch.
func RecordFetch(tier string, d time.Duration, err error) {
	fetchDuration.WithLabelValues(tier).Observe(d.Seconds())
	if err != nil {
		fetchErrorsTotal.WithLabelValues(tier).Inc()
	}
}

// RecordDropped counts one request dropped at the fetch queue.
func RecordDropped() {
	fetchQueueDropped.Inc()
}

// RecordFrame observes one drawn frame.
func RecordFrame(d time.Duration) {
	frameDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
