package monitoring

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	detectionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reserve_detection_runs_total",
			Help: "Detection runs by trigger and outcome",
		},
		[]string{"trigger", "status"},
	)

	conflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reserve_conflicts_detected_total",
			Help: "Conflicts found per detection pass kind",
		},
		[]string{"kind"},
	)

	invalidBookings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reserve_invalid_bookings_total",
			Help: "Bookings with malformed time records seen during detection",
		},
	)

	detectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reserve_detection_duration_seconds",
			Help:    "Duration of detection runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"trigger"},
	)

	availabilityRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reserve_availability_requests_total",
			Help: "Availability lookups by result source",
		},
		[]string{"source"},
	)
)

// TrackDetection records one detection run.
func TrackDetection(trigger string, conflictsByKind map[string]int, invalid int, duration time.Duration) {
	detectionRuns.WithLabelValues(trigger, "ok").Inc()
	detectionDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	for kind, count := range conflictsByKind {
		conflictsDetected.WithLabelValues(kind).Add(float64(count))
	}
	invalidBookings.Add(float64(invalid))
}

// TrackDetectionRejected records a run that failed request validation.
func TrackDetectionRejected(trigger string) {
	detectionRuns.WithLabelValues(trigger, "rejected").Inc()
}

// TrackAvailability records an availability lookup; source is "cache" or
// "computed".
func TrackAvailability(source string) {
	availabilityRequests.WithLabelValues(source).Inc()
}

// Metrics exposes the Prometheus scrape endpoint as an HTTP module.
type Metrics struct{}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RegisterRoutes(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())
}
