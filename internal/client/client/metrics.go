package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the client-side request collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "hospivibe", Subsystem: "client", Name: "requests_total", Help: "Backend requests by operation and result code."},
			[]string{"operation", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: "hospivibe", Subsystem: "client", Name: "request_duration_seconds", Help: "Backend request latency by operation.", Buckets: prometheus.DefBuckets},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) RegisterCollectors(reg prometheus.Registerer) error {
	if err := reg.Register(m.Requests); err != nil {
		return err
	}
	return reg.Register(m.Duration)
}
