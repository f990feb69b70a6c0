// Package metrics exposes Prometheus counters for the dialogue and cart.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopbot"

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	MessagesTotal    *prometheus.CounterVec
	FailuresTotal    *prometheus.CounterVec
	CartChangesTotal *prometheus.CounterVec
	SessionsTotal    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers all collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	return &Metrics{
		MessagesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Messages handled, by input source and classified intent",
			},
			[]string{"source", "intent"}, // source=text/button
		),
		FailuresTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Recovered dialogue failures, by kind",
			},
			[]string{"kind"},
		),
		CartChangesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_changes_total",
				Help:      "Successful cart mutations, by operation",
			},
			[]string{"op"}, // op=add/remove/clear/checkout
		),
		SessionsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_seen_total",
				Help:      "Sessions created, one per user on their first cart or selection change",
			},
		),
		gatherer: reg,
	}
}

// ObserveMessage counts one handled message.
func (m *Metrics) ObserveMessage(source, intent string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(source, intent).Inc()
}

// ObserveFailure counts one recovered failure.
func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

// ObserveCartChange counts one committed cart mutation.
func (m *Metrics) ObserveCartChange(op string) {
	if m == nil {
		return
	}
	m.CartChangesTotal.WithLabelValues(op).Inc()
}

// ObserveSession counts a newly seen user.
func (m *Metrics) ObserveSession() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
