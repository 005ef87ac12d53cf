package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records counters for cart and checkout activity.
type StorefrontMetrics struct {
	cartMutations   *prometheus.CounterVec
	ordersSubmitted prometheus.Counter
	ordersFailed    prometheus.Counter
	submitDuration  prometheus.Histogram
	statusChanges   *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	ordersSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders persisted through checkout.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Checkout submissions that did not produce an order.",
	})
	submitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(cartMutations, ordersSubmitted, ordersFailed, submitDuration, statusChanges)
	return &StorefrontMetrics{
		cartMutations:   cartMutations,
		ordersSubmitted: ordersSubmitted,
		ordersFailed:    ordersFailed,
		submitDuration:  submitDuration,
		statusChanges:   statusChanges,
	}
}

// IncCartMutation increments the mutation counter for the named operation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncOrderSubmitted increments the successful submission counter.
func (m *StorefrontMetrics) IncOrderSubmitted() {
	if m == nil || m.ordersSubmitted == nil {
		return
	}
	m.ordersSubmitted.Inc()
}

// IncOrderFailed increments the failed submission counter.
func (m *StorefrontMetrics) IncOrderFailed() {
	if m == nil || m.ordersFailed == nil {
		return
	}
	m.ordersFailed.Inc()
}

// ObserveSubmitDuration records how long a checkout submission took.
func (m *StorefrontMetrics) ObserveSubmitDuration(duration time.Duration) {
	if m == nil || m.submitDuration == nil {
		return
	}
	m.submitDuration.Observe(duration.Seconds())
}

// IncStatusChange increments the transition counter for the target status.
func (m *StorefrontMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
