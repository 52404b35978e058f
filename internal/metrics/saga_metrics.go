package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SagaMetrics содержит метрики саги размещения заказа.
type SagaMetrics struct {
	// Счётчики исходов саги
	sagaStarted   prometheus.Counter
	sagaCompleted prometheus.Counter
	sagaFailed    prometheus.Counter
	sagaCanceled  prometheus.Counter

	// Компенсации ресторанного шага
	compensations       prometheus.Counter
	compensationsFailed prometheus.Counter

	// Гистограммы времени выполнения
	sagaDuration prometheus.Histogram
	stepDuration *prometheus.HistogramVec

	// События timeline
	timelineEvents prometheus.Counter

	// Gauge для саг в полёте
	activeSagas prometheus.Gauge
}

// NewSagaMetrics создаёт метрики саги в default-регистре Prometheus.
func NewSagaMetrics() *SagaMetrics {
	return newSagaMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSagaMetricsWithRegisterer(registerer prometheus.Registerer) *SagaMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SagaMetrics{
		sagaStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_saga_started_total",
			Help: "Total number of place-order sagas started",
		}),
		sagaCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_saga_completed_total",
			Help: "Total number of sagas finished with a confirmed order",
		}),
		sagaFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_saga_failed_total",
			Help: "Total number of sagas finished with a canceled order",
		}),
		sagaCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_saga_manual_cancel_total",
			Help: "Total number of manual order cancellations",
		}),
		compensations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_saga_compensations_total",
			Help: "Total number of restaurant compensations issued",
		}),
		compensationsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_saga_compensation_failures_total",
			Help: "Total number of compensation calls that failed (swallowed)",
		}),
		sagaDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fos_saga_duration_seconds",
			Help:    "Duration of place-order sagas in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "fos_saga_step_duration_seconds",
			Help:    "Duration of individual saga steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fos_timeline_events_total",
			Help: "Total number of order timeline events recorded",
		}),
		activeSagas: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fos_active_sagas",
			Help: "Number of currently running place-order sagas",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordSagaStarted увеличивает счётчик запущенных саг и саг в полёте.
func (m *SagaMetrics) RecordSagaStarted() {
	m.sagaStarted.Inc()
	m.activeSagas.Inc()
}

// RecordSagaCompleted увеличивает счётчик успешно завершённых саг.
func (m *SagaMetrics) RecordSagaCompleted() {
	m.sagaCompleted.Inc()
}

// RecordSagaFailed увеличивает счётчик саг, завершившихся отменой.
func (m *SagaMetrics) RecordSagaFailed() {
	m.sagaFailed.Inc()
}

// RecordManualCancel увеличивает счётчик ручных отмен.
func (m *SagaMetrics) RecordManualCancel() {
	m.sagaCanceled.Inc()
}

// RecordCompensation увеличивает счётчик выполненных компенсаций.
func (m *SagaMetrics) RecordCompensation() {
	m.compensations.Inc()
}

// RecordCompensationFailed увеличивает счётчик проваленных компенсаций.
func (m *SagaMetrics) RecordCompensationFailed() {
	m.compensationsFailed.Inc()
}

// RecordSagaFinished уменьшает количество саг в полёте и записывает длительность.
func (m *SagaMetrics) RecordSagaFinished(duration time.Duration) {
	m.activeSagas.Dec()
	m.sagaDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага саги.
func (m *SagaMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *SagaMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}
