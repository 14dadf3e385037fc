package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports worker queue depth and job timings.
type Metrics struct {
	depth    prometheus.Gauge
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ghplayer", Subsystem: "worker", Name: "queue_depth",
			Help: "Jobs waiting for the sequential worker.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ghplayer", Subsystem: "worker", Name: "job_duration_seconds",
			Help:    "Time spent running each job.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"job"}),
	}
	if reg != nil {
		reg.MustRegister(m.depth, m.duration)
	}
	return m
}

func (m *Metrics) setDepth(n int) {
	if m != nil {
		m.depth.Set(float64(n))
	}
}

func (m *Metrics) observeJob(name string, elapsed time.Duration) {
	if m != nil {
		m.duration.WithLabelValues(name).Observe(elapsed.Seconds())
	}
}
