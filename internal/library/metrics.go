package library

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts library requests and the fallbacks served in their place.
type Metrics struct {
	requests  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghplayer", Subsystem: "library", Name: "requests_total",
			Help: "Library requests by operation.",
		}, []string{"operation"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghplayer", Subsystem: "library", Name: "fallbacks_total",
			Help: "Requests answered with an empty list or the client queue after a failure.",
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.fallbacks)
	}
	return m
}

func (m *Metrics) observeRequest(operation string) {
	if m != nil {
		m.requests.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) observeFallback(operation string) {
	if m != nil {
		m.fallbacks.WithLabelValues(operation).Inc()
	}
}
