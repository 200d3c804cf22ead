package kms

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	payload  *prometheus.CounterVec
	failures prometheus.Counter
}

func newMetrics(registry prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bufcrypt",
			Subsystem: "kms",
			Name:      "requests_total",
			Help:      "Handled requests by method and status code",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bufcrypt",
			Subsystem: "kms",
			Name:      "request_duration_seconds",
			Help:      "Request handling time by method",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"method"}),
		payload: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bufcrypt",
			Subsystem: "kms",
			Name:      "payload_bytes_total",
			Help:      "Bytes sealed, opened or digested",
		}, []string{"method"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bufcrypt",
			Subsystem: "kms",
			Name:      "authentication_failures_total",
			Help:      "Open requests rejected because the tag did not match",
		}),
	}
	if registry == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.payload, m.failures} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
