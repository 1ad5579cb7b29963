package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics records relay pipeline outcomes per supplier.
type RelayMetrics struct {
	ordersProcessed *prometheus.CounterVec
	sendDuration    *prometheus.HistogramVec
	sendFailures    *prometheus.CounterVec
	statusSyncs     *prometheus.CounterVec
}

// NewRelayMetrics registers the relay metrics on the provided registerer.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	if reg == nil {
		return &RelayMetrics{}
	}
	ordersProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_orders_processed_total",
		Help: "Placed orders processed by the relay, by result.",
	}, []string{"result"})
	sendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_supplier_send_duration_seconds",
		Help:    "Duration of supplier order forwarding calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"supplier"})
	sendFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_supplier_send_failures_total",
		Help: "Failed supplier order forwarding calls, by error code.",
	}, []string{"supplier", "code"})
	statusSyncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_status_syncs_total",
		Help: "Remote status checks, by resulting transition.",
	}, []string{"supplier", "transition"})
	reg.MustRegister(ordersProcessed, sendDuration, sendFailures, statusSyncs)
	return &RelayMetrics{
		ordersProcessed: ordersProcessed,
		sendDuration:    sendDuration,
		sendFailures:    sendFailures,
		statusSyncs:     statusSyncs,
	}
}

// IncOrderProcessed increments the processed counter with the given result label.
func (m *RelayMetrics) IncOrderProcessed(result string) {
	if m == nil || m.ordersProcessed == nil {
		return
	}
	m.ordersProcessed.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveSendDuration records how long one supplier forwarding call took.
func (m *RelayMetrics) ObserveSendDuration(supplier string, duration time.Duration) {
	if m == nil || m.sendDuration == nil {
		return
	}
	m.sendDuration.WithLabelValues(normalizeLabel(supplier)).Observe(duration.Seconds())
}

// IncSendFailure increments the failure counter for the supplier/code pair.
func (m *RelayMetrics) IncSendFailure(supplier, code string) {
	if m == nil || m.sendFailures == nil {
		return
	}
	m.sendFailures.WithLabelValues(normalizeLabel(supplier), normalizeLabel(code)).Inc()
}

// IncStatusSync increments the status sync counter for the observed transition.
func (m *RelayMetrics) IncStatusSync(supplier, transition string) {
	if m == nil || m.statusSyncs == nil {
		return
	}
	m.statusSyncs.WithLabelValues(normalizeLabel(supplier), normalizeLabel(transition)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
