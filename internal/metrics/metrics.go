// Package metrics exposes ceremony and wallet counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sui_passkey"

type Metrics struct {
	ceremonies       *prometheus.CounterVec
	ceremonyDuration *prometheus.HistogramVec
	operations       *prometheus.CounterVec
	connected        prometheus.Gauge
}

// New registers the collectors with reg. A nil *Metrics is valid and records nothing.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ceremonies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ceremonies_total",
			Help:      "Authenticator ceremonies by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ceremonyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ceremony_duration_seconds",
			Help:      "Time spent waiting on the authenticator.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}, []string{"kind"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_operations_total",
			Help:      "Wallet protocol operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wallet_connected",
			Help:      "1 while the wallet holds a connected account.",
		}),
	}
	reg.MustRegister(m.ceremonies, m.ceremonyDuration, m.operations, m.connected)
	return m
}

// ObserveCeremony records one finished ceremony that started at start.
func (m *Metrics) ObserveCeremony(kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ceremonies.WithLabelValues(kind, outcome(err)).Inc()
	m.ceremonyDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
