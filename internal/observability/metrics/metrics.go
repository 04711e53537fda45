package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics exposes counters/histograms for the conversation flows.
// A nil receiver is safe and records nothing, so wiring metrics stays
// optional in tests.
type ChatMetrics struct {
	turnsTotal    *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	bookingsTotal *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthchatbot",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns processed",
		}, []string{"flow", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthchatbot",
			Subsystem: "chat",
			Name:      "llm_latency_seconds",
			Help:      "Latency of LLM generation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"prompt_kind"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthchatbot",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total appointment booking attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.llmLatency, m.bookingsTotal)
	return m
}

func (m *ChatMetrics) ObserveTurn(flow, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(flow, status).Inc()
}

func (m *ChatMetrics) ObserveLLMLatency(promptKind string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(promptKind).Observe(d.Seconds())
}

func (m *ChatMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}
