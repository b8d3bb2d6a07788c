package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты попыток публикации outbox.
const (
	OutboxResultSent       = "sent"
	OutboxResultRetryError = "retry_error"
	OutboxResultFailed     = "failed"
	OutboxResultDLQFailed  = "dlq_failed"
)

// OutboxMetrics: метрики воркера transactional outbox.
type OutboxMetrics struct {
	attempts         *prometheus.CounterVec
	pending          prometheus.Gauge
	oldestPendingAge prometheus.Gauge
	failed           prometheus.Gauge
}

// NewOutboxMetrics регистрирует метрики outbox в DefaultRegisterer.
func NewOutboxMetrics() *OutboxMetrics {
	return NewOutboxMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOutboxMetricsWithRegisterer регистрирует метрики outbox в переданном registerer.
func NewOutboxMetricsWithRegisterer(registerer prometheus.Registerer) *OutboxMetrics {
	return &OutboxMetrics{
		attempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_outbox_publish_attempts_total",
			Help: "Total number of outbox publish attempts grouped by result.",
		}, []string{"result"}),
		pending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "pos_outbox_pending_records",
			Help: "Current number of pending records in transactional outbox.",
		}),
		oldestPendingAge: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "pos_outbox_oldest_pending_age_seconds",
			Help: "Age in seconds of the oldest pending outbox record.",
		}),
		failed: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "pos_outbox_failed_records",
			Help: "Current number of outbox records that exhausted publish attempts.",
		}),
	}
}

// RecordAttempt увеличивает счётчик попыток с результатом.
func (m *OutboxMetrics) RecordAttempt(result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(result).Inc()
}

// SetBacklog выставляет размер backlog и возраст самой старой записи.
func (m *OutboxMetrics) SetBacklog(pending int, oldestAgeSeconds float64) {
	if m == nil {
		return
	}
	if oldestAgeSeconds < 0 {
		oldestAgeSeconds = 0
	}
	m.pending.Set(float64(pending))
	m.oldestPendingAge.Set(oldestAgeSeconds)
}

// SetFailed выставляет число записей в статусе failed.
func (m *OutboxMetrics) SetFailed(failed int) {
	if m == nil {
		return
	}
	m.failed.Set(float64(failed))
}
