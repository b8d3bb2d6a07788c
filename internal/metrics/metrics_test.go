package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	result := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		result[mf.GetName()] = mf
	}
	return result
}

func TestCheckoutMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetricsWithRegisterer(reg)

	m.RecordCommitted(85, 2, 20*time.Millisecond)
	m.RecordFailure(ReasonEmptyCart)
	m.RecordFailure(ReasonEmptyCart)
	m.RecordFailure(ReasonStorage)

	families := gather(t, reg)

	committed := families["pos_orders_committed_total"]
	require.NotNil(t, committed)
	assert.Equal(t, 1.0, committed.GetMetric()[0].GetCounter().GetValue())

	amount := families["pos_order_amount"]
	require.NotNil(t, amount)
	assert.Equal(t, 85.0, amount.GetMetric()[0].GetHistogram().GetSampleSum())

	lines := families["pos_order_lines"]
	require.NotNil(t, lines)
	assert.Equal(t, uint64(1), lines.GetMetric()[0].GetHistogram().GetSampleCount())

	failures := families["pos_order_commit_failures_total"]
	require.NotNil(t, failures)
	byReason := map[string]float64{}
	for _, metric := range failures.GetMetric() {
		byReason[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{ReasonEmptyCart: 2, ReasonStorage: 1}, byReason)
}

func TestCheckoutMetrics_ReRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewCheckoutMetricsWithRegisterer(reg)
	second := NewCheckoutMetricsWithRegisterer(reg)

	first.RecordCommitted(10, 1, time.Millisecond)
	second.RecordCommitted(10, 1, time.Millisecond)

	committed := gather(t, reg)["pos_orders_committed_total"]
	require.NotNil(t, committed)
	assert.Equal(t, 2.0, committed.GetMetric()[0].GetCounter().GetValue())
}

func TestCheckoutMetrics_NilSafe(t *testing.T) {
	var m *CheckoutMetrics
	assert.NotPanics(t, func() {
		m.RecordCommitted(1, 1, time.Millisecond)
		m.RecordFailure(ReasonStorage)
	})
}

func TestOutboxMetrics_Backlog(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetricsWithRegisterer(reg)

	m.RecordAttempt(OutboxResultSent)
	m.SetBacklog(3, -5)
	m.SetFailed(2)

	families := gather(t, reg)
	assert.Equal(t, 3.0, families["pos_outbox_pending_records"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 0.0, families["pos_outbox_oldest_pending_age_seconds"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.0, families["pos_outbox_publish_attempts_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, families["pos_outbox_failed_records"].GetMetric()[0].GetGauge().GetValue())
}

func TestRegister_TypeMismatchPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	registerCounter(reg, prometheus.CounterOpts{Name: "pos_conflict", Help: "conflict"})

	assert.Panics(t, func() {
		registerGauge(reg, prometheus.GaugeOpts{Name: "pos_conflict", Help: "conflict"})
	})
}
