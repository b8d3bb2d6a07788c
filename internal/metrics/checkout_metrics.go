package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины неудачного оформления заказа для лейбла reason.
const (
	ReasonEmptyCart       = "empty_cart"
	ReasonProductNotFound = "product_not_found"
	ReasonInvalidOrder    = "invalid_order"
	ReasonStorage         = "storage"
)

// CheckoutMetrics содержит метрики оформления заказов.
type CheckoutMetrics struct {
	committed      prometheus.Counter
	failures       *prometheus.CounterVec
	commitDuration prometheus.Histogram
	orderAmount    prometheus.Histogram
	orderLines     prometheus.Histogram
}

// NewCheckoutMetrics регистрирует метрики в DefaultRegisterer.
func NewCheckoutMetrics() *CheckoutMetrics {
	return NewCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCheckoutMetricsWithRegisterer регистрирует метрики в переданном registerer.
func NewCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	return &CheckoutMetrics{
		committed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_committed_total",
			Help: "Total number of orders committed to storage",
		}),
		failures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_order_commit_failures_total",
			Help: "Total number of failed order commits grouped by reason",
		}, []string{"reason"}),
		commitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_order_commit_duration_seconds",
			Help:    "Duration of order commit transaction in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		orderAmount: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_order_amount",
			Help:    "Total amount of committed orders",
			Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000},
		}),
		orderLines: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_order_lines",
			Help:    "Number of distinct lines per committed order",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

// RecordCommitted фиксирует успешное оформление.
func (m *CheckoutMetrics) RecordCommitted(amount float64, lines int, duration time.Duration) {
	if m == nil {
		return
	}
	m.committed.Inc()
	m.orderAmount.Observe(amount)
	m.orderLines.Observe(float64(lines))
	m.commitDuration.Observe(duration.Seconds())
}

// RecordFailure фиксирует неудачное оформление с причиной.
func (m *CheckoutMetrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}
