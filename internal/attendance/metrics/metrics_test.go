package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/metrics"
)

// value reads the current value of a counter or gauge.
func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *metrics.Metrics
	m.IncrementReceived()
	m.IncrementOutcome("Present")
	m.IncrementFeedback("valid")
	m.IncrementFailure("decode")
	m.ObserveScan(time.Now())
	m.SetDriverState(2)
	m.SetStoreUp(true)
}

func TestCountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.IncrementReceived()
	m.IncrementReceived()
	m.IncrementOutcome("Denied")
	m.IncrementFeedback("invalid")
	m.IncrementFailure("store")
	m.SetDriverState(2)
	m.SetStoreUp(true)
	m.ObserveScan(time.Now())

	assert.Equal(t, 2.0, value(t, m.ScansReceived))
	assert.Equal(t, 1.0, value(t, m.ScanOutcomes.WithLabelValues("Denied")))
	assert.Equal(t, 1.0, value(t, m.Feedback.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, value(t, m.PipelineFailures.WithLabelValues("store")))
	assert.Equal(t, 2.0, value(t, m.DriverState))
	assert.Equal(t, 1.0, value(t, m.StoreUp))

	m.SetStoreUp(false)
	assert.Equal(t, 0.0, value(t, m.StoreUp))

	var h dto.Metric
	require.NoError(t, m.ScanDuration.Write(&h))
	assert.Equal(t, uint64(1), h.Histogram.GetSampleCount())
}

func TestNewOnSeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry())
		metrics.New(prometheus.NewRegistry())
	})
}
