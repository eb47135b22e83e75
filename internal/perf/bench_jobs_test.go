package perf

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/odyssey-erp/odyssey-lite/internal/jobs"
	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

func TestSweepJobThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	registry := ledger.NewRegistry(ledger.DefaultLowStockThreshold, time.Millisecond)

	// Several rounds of sessions going idle between sweeps.
	for round := 0; round < 20; round++ {
		for i := 0; i < 500; i++ {
			registry.Get(fmt.Sprintf("session-%d-%d", round, i))
		}
		time.Sleep(2 * time.Millisecond)
		tracker := metrics.Track("ledger.sweep")
		tracker.Processed(registry.Sweep())
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending sweep tracker: %v", err)
		}
	}

	// A failed run must still be counted.
	if err := metrics.Track("ledger.sweep").End(errors.New("panic")); err == nil {
		t.Fatal("expected error to propagate")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "odyssey_jobs_total", map[string]string{"job": "ledger.sweep", "status": "success"})
	failure := metricValue(t, families, "odyssey_jobs_total", map[string]string{"job": "ledger.sweep", "status": "failure"})
	if ratio := success / (success + failure); ratio < 0.9 {
		t.Fatalf("sweep success ratio too low: %f", ratio)
	}

	if items := metricValue(t, families, "odyssey_job_items_total", map[string]string{"job": "ledger.sweep"}); items != 10000 {
		t.Fatalf("expected 10000 evicted ledgers, got %f", items)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Len())
	}

	if mean := histogramMean(t, families, "odyssey_job_duration_seconds", map[string]string{"job": "ledger.sweep"}); mean > 0.1 {
		t.Fatalf("sweep duration above budget: %f", mean)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; !ok || val != lp.GetValue() {
			return false
		}
	}
	return true
}
