package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics() *SagaMetrics {
	return newSagaMetricsWithRegisterer(prometheus.NewRegistry())
}

func TestSagaMetrics_Counters(t *testing.T) {
	m := newTestMetrics()

	m.RecordSagaStarted()
	m.RecordSagaStarted()
	m.RecordSagaCompleted()
	m.RecordSagaFailed()
	m.RecordManualCancel()
	m.RecordCompensation()
	m.RecordCompensationFailed()
	m.RecordTimelineEvent()

	if got := testutil.ToFloat64(m.sagaStarted); got != 2 {
		t.Errorf("expected 2 started, got %v", got)
	}
	if got := testutil.ToFloat64(m.sagaCompleted); got != 1 {
		t.Errorf("expected 1 completed, got %v", got)
	}
	if got := testutil.ToFloat64(m.sagaFailed); got != 1 {
		t.Errorf("expected 1 failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.sagaCanceled); got != 1 {
		t.Errorf("expected 1 manual cancel, got %v", got)
	}
	if got := testutil.ToFloat64(m.compensations); got != 1 {
		t.Errorf("expected 1 compensation, got %v", got)
	}
	if got := testutil.ToFloat64(m.compensationsFailed); got != 1 {
		t.Errorf("expected 1 failed compensation, got %v", got)
	}
	if got := testutil.ToFloat64(m.timelineEvents); got != 1 {
		t.Errorf("expected 1 timeline event, got %v", got)
	}
}

func TestSagaMetrics_ActiveSagasGauge(t *testing.T) {
	m := newTestMetrics()

	m.RecordSagaStarted()
	m.RecordSagaStarted()
	if got := testutil.ToFloat64(m.activeSagas); got != 2 {
		t.Fatalf("expected 2 active sagas, got %v", got)
	}

	m.RecordSagaFinished(10 * time.Millisecond)
	if got := testutil.ToFloat64(m.activeSagas); got != 1 {
		t.Fatalf("expected 1 active saga after finish, got %v", got)
	}
}

func TestSagaMetrics_DoubleRegistrationReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newSagaMetricsWithRegisterer(registry)
	second := newSagaMetricsWithRegisterer(registry)

	first.RecordSagaCompleted()
	second.RecordSagaCompleted()

	if got := testutil.ToFloat64(second.sagaCompleted); got != 2 {
		t.Fatalf("expected shared counter with value 2, got %v", got)
	}
}
