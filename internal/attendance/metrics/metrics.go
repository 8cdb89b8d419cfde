package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scan pipeline and its driver.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	ScansReceived prometheus.Counter

	// Resolved status written to the attendance log
	ScanOutcomes *prometheus.CounterVec

	// Feedback status sent back to the device
	Feedback *prometheus.CounterVec

	// Failures by kind: decode, store, publish
	PipelineFailures *prometheus.CounterVec

	ScanDuration prometheus.Histogram

	// Current driver state as a numeric gauge
	DriverState prometheus.Gauge

	StoreUp prometheus.Gauge
}

// New registers all attendance metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ScansReceived: f.NewCounter(prometheus.CounterOpts{
			Name: "attendance_scans_received_total",
			Help: "Total scan messages received from the broker",
		}),
		ScanOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_scan_outcomes_total",
			Help: "Total attendance events recorded by resolved status",
		}, []string{"resolved_status"}),
		Feedback: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_feedback_total",
			Help: "Total feedback messages published by status",
		}, []string{"status"}),
		PipelineFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_pipeline_failures_total",
			Help: "Total scan pipeline failures by kind",
		}, []string{"kind"}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_scan_duration_seconds",
			Help:    "Duration of a single scan from receipt to feedback",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		DriverState: f.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_driver_state",
			Help: "Subscription driver state (0=disconnected, 1=connecting, 2=subscribed, 3=shutdown)",
		}),
		StoreUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_store_up",
			Help: "1 when the last store probe succeeded, 0 otherwise",
		}),
	}
}

func (m *Metrics) IncrementReceived() {
	if m != nil {
		m.ScansReceived.Inc()
	}
}

// IncrementOutcome records an event written with the given resolved status.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.ScanOutcomes.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementFeedback(status string) {
	if m != nil {
		m.Feedback.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementFailure(kind string) {
	if m != nil {
		m.PipelineFailures.WithLabelValues(kind).Inc()
	}
}

// ObserveScan records the time elapsed since start.
func (m *Metrics) ObserveScan(start time.Time) {
	if m != nil {
		m.ScanDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) SetDriverState(v int) {
	if m != nil {
		m.DriverState.Set(float64(v))
	}
}

func (m *Metrics) SetStoreUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.StoreUp.Set(1)
	} else {
		m.StoreUp.Set(0)
	}
}
