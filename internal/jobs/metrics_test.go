package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tracker := m.Track("ledger.sweep")
	tracker.Processed(3)
	tracker.Processed(-1)
	require.NoError(t, tracker.End(nil))

	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("ledger.sweep").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger.sweep", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger.sweep", "failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.processed.WithLabelValues("ledger.sweep")))
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	tracker := m.Track("ledger.sweep")
	tracker.Processed(1)
	boom := errors.New("boom")
	assert.Equal(t, boom, tracker.End(boom))

	var nilTracker *Tracker
	assert.NoError(t, nilTracker.End(nil))
}
