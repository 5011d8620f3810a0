package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics exposes counters/histograms for the chat orchestration flow.
type ChatMetrics struct {
	messagesTotal  *prometheus.CounterVec
	ordersTotal    *prometheus.CounterVec
	handleDuration prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmacy",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total chat messages handled, by outcome",
		}, []string{"outcome"}),
		ordersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmacy",
			Subsystem: "chat",
			Name:      "orders_total",
			Help:      "Total order attempts, by result",
		}, []string{"result"}),
		handleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pharmacy",
			Subsystem: "chat",
			Name:      "handle_duration_seconds",
			Help:      "Duration of a single message orchestration",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.ordersTotal, m.handleDuration)
	return m
}

func (m *ChatMetrics) ObserveMessage(outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveOrder(result string) {
	if m == nil {
		return
	}
	m.ordersTotal.WithLabelValues(result).Inc()
}

func (m *ChatMetrics) ObserveHandleDuration(seconds float64) {
	if m == nil {
		return
	}
	m.handleDuration.Observe(seconds)
}
