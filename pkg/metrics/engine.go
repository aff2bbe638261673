package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records order lifecycle and stock accounting activity.
type EngineMetrics struct {
	orders           *prometheus.CounterVec
	stockClamps      *prometheus.CounterVec
	estimateDuration prometheus.Histogram
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_total",
		Help: "Order lifecycle events by type.",
	}, []string{"event"})
	stockClamps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_clamp_total",
		Help: "Stock balances clamped to zero, by item kind.",
	}, []string{"item_kind"})
	estimateDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "estimate_duration_seconds",
		Help:    "Duration of cost estimations in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(orders, stockClamps, estimateDuration)
	return &EngineMetrics{
		orders:           orders,
		stockClamps:      stockClamps,
		estimateDuration: estimateDuration,
	}
}

// IncOrderEvent increments the lifecycle counter for the named event.
func (m *EngineMetrics) IncOrderEvent(event string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncStockClamp increments the clamp counter for the item kind.
func (m *EngineMetrics) IncStockClamp(itemKind string) {
	if m == nil || m.stockClamps == nil {
		return
	}
	m.stockClamps.WithLabelValues(normalizeLabel(itemKind)).Inc()
}

// ObserveEstimateDuration records how long a cost estimation took.
func (m *EngineMetrics) ObserveEstimateDuration(duration time.Duration) {
	if m == nil || m.estimateDuration == nil {
		return
	}
	m.estimateDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
