package mockserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the mock backend counters.
type Metrics struct {
	Registry       *prometheus.Registry
	Exchanges      prometheus.Counter
	TokensStreamed prometheus.Counter
	ErrorEvents    prometheus.Counter
	BadEnvelopes   prometheus.Counter
}

// NewMetrics creates counters registered on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Exchanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfchat_mock",
			Name:      "exchanges_total",
			Help:      "Query envelopes accepted.",
		}),
		TokensStreamed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfchat_mock",
			Name:      "tokens_streamed_total",
			Help:      "Token events written to clients.",
		}),
		ErrorEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfchat_mock",
			Name:      "error_events_total",
			Help:      "Error events written to clients.",
		}),
		BadEnvelopes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfchat_mock",
			Name:      "bad_envelopes_total",
			Help:      "Connections whose first frame was not a valid query envelope.",
		}),
	}
	m.Registry.MustRegister(m.Exchanges, m.TokensStreamed, m.ErrorEvents, m.BadEnvelopes)
	return m
}
