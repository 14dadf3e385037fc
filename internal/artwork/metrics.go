package artwork

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports artwork cache and download counters.
type Metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
	bytes     prometheus.Gauge
	downloads *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghplayer", Subsystem: "artwork_cache", Name: "hits_total",
			Help: "Artwork cache lookups served from memory.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghplayer", Subsystem: "artwork_cache", Name: "misses_total",
			Help: "Artwork cache lookups that required a download.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ghplayer", Subsystem: "artwork_cache", Name: "evictions_total",
			Help: "Entries evicted to respect the byte budget.",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ghplayer", Subsystem: "artwork_cache", Name: "entries",
			Help: "Entries currently cached.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ghplayer", Subsystem: "artwork_cache", Name: "bytes",
			Help: "Bytes currently cached.",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghplayer", Subsystem: "artwork", Name: "downloads_total",
			Help: "Artwork downloads by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.evictions, m.entries, m.bytes, m.downloads)
	}
	return m
}

func (m *Metrics) observeHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) observeMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) observeEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *Metrics) observeSize(entries int, bytes int64) {
	if m != nil {
		m.entries.Set(float64(entries))
		m.bytes.Set(float64(bytes))
	}
}

func (m *Metrics) observeDownload(outcome string) {
	if m != nil {
		m.downloads.WithLabelValues(outcome).Inc()
	}
}
